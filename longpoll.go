package updraft

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/quorik/updraft/types"
)

const (
	defaultPollLimit    = 100
	defaultPollTimeout  = 10 * time.Second
	defaultErrorTimeout = 5 * time.Second
)

// UpdateSource produces batches of updates for a LongPoll loop.
// *Client implements it via getUpdates.
type UpdateSource interface {
	GetUpdates(ctx context.Context, req GetUpdatesRequest) ([]types.Update, error)
}

// LongPollOptions configures a LongPoll transport.
type LongPollOptions struct {
	// Offset is the initial cursor. Zero starts from the oldest
	// unconfirmed update.
	Offset int64

	// Limit caps the batch size, 1..100. Defaults to 100.
	Limit int

	// PollTimeout is the server-side long-poll timeout. Defaults to 10s.
	PollTimeout time.Duration

	// ErrorTimeout is the backoff after a failed pull when the server
	// supplies no retry_after hint. Defaults to 5s.
	ErrorTimeout time.Duration

	// AllowedUpdates restricts the update kinds the server delivers.
	AllowedUpdates []types.AllowedUpdate
}

func (o *LongPollOptions) setDefaults() {
	if o.Limit == 0 {
		o.Limit = defaultPollLimit
	}
	if o.PollTimeout == 0 {
		o.PollTimeout = defaultPollTimeout
	}
	if o.ErrorTimeout == 0 {
		o.ErrorTimeout = defaultErrorTimeout
	}
}

func (o *LongPollOptions) validate() error {
	if o.Limit < 1 || o.Limit > 100 {
		return ErrInvalidLimit
	}
	return nil
}

// LongPoll pulls updates from the Bot API and feeds them to a handler
// strictly one at a time.
//
// The loop cycles through three states: draining a buffered batch, a
// pending pull request, and a timed backoff after a failure. The cursor
// only ever advances (offset = max(offset, id)), so a delivered update is
// acknowledged on the next pull. Delivery is at-least-once: the cursor can
// advance before a handler finishes, so handlers that must survive a crash
// mid-update need to be idempotent.
type LongPoll struct {
	source  UpdateSource
	handler UpdateHandler
	options LongPollOptions
	logger  *zap.Logger
	running atomic.Bool
}

// NewLongPoll creates a long-polling transport delivering to handler.
func NewLongPoll(source UpdateSource, handler UpdateHandler, options LongPollOptions, logger *zap.Logger) (*LongPoll, error) {
	if handler == nil {
		return nil, ErrMissingHandler
	}
	options.setDefaults()
	if err := options.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LongPoll{
		source:  source,
		handler: handler,
		options: options,
		logger:  logger,
	}, nil
}

// Run blocks, pulling and dispatching updates until ctx is cancelled.
//
// Cancellation is cooperative: the flag is checked once per loop iteration
// and between deliveries; an in-flight network call is not aborted beyond
// what the request context provides.
func (lp *LongPoll) Run(ctx context.Context) error {
	if !lp.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer lp.running.Store(false)

	offset := lp.options.Offset
	var buffered []types.Update

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Drain the buffer one update at a time before pulling again.
		if len(buffered) > 0 {
			update := buffered[0]
			buffered = buffered[1:]
			if update.ID > offset {
				offset = update.ID
			}
			lp.handler.HandleUpdate(ctx, &update)
			continue
		}

		batch, err := lp.source.GetUpdates(ctx, GetUpdatesRequest{
			Offset:         offset + 1,
			Limit:          lp.options.Limit,
			Timeout:        int(lp.options.PollTimeout / time.Second),
			AllowedUpdates: lp.options.AllowedUpdates,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			timeout := lp.errorTimeout(err)
			lp.logger.Error("getUpdates failed, backing off",
				zap.Error(err),
				zap.Duration("timeout", timeout))
			if !sleep(ctx, timeout) {
				return ctx.Err()
			}
			continue
		}
		buffered = batch
	}
}

// errorTimeout picks the backoff duration for a failed pull: the server's
// retry_after hint when present, the configured default otherwise.
func (lp *LongPoll) errorTimeout(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return apiErr.RetryAfter
	}
	return lp.options.ErrorTimeout
}

// sleep waits for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
