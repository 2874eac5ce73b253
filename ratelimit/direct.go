package ratelimit

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/quorik/updraft"
)

type policy int

const (
	policyDiscard policy = iota
	policyWait
	policyWaitJitter
)

// Jitter is a bounded random delay added on top of a wait, spreading out
// callers that would otherwise wake at the same instant.
type Jitter struct {
	Min time.Duration
	Max time.Duration
}

// UpTo is a jitter in [0, max).
func UpTo(max time.Duration) Jitter {
	return Jitter{Max: max}
}

var errInvalidJitter = errors.New("ratelimit: jitter bounds must satisfy 0 <= min <= max")

func (j Jitter) validate() error {
	if j.Min < 0 || j.Max < j.Min {
		return errInvalidJitter
	}
	return nil
}

func (j Jitter) delay() time.Duration {
	if span := j.Max - j.Min; span > 0 {
		return j.Min + time.Duration(rand.Int63n(int64(span)))
	}
	return j.Min
}

// Direct is a rate-limit predicate backed by one bucket shared by every
// matching update. The admission policy is fixed at construction.
type Direct struct {
	mu     sync.Mutex
	bucket *gcra
	policy policy
	jitter Jitter

	now func() time.Time
}

// DirectDiscard rejects updates immediately while the shared bucket is
// empty. Rejected updates skip the guarded handler.
func DirectDiscard(quota Quota) (*Direct, error) {
	return newDirect(quota, policyDiscard, Jitter{})
}

// DirectWait suspends the caller until the shared bucket frees a token.
func DirectWait(quota Quota) (*Direct, error) {
	return newDirect(quota, policyWait, Jitter{})
}

// DirectWaitWithJitter waits for a token and then sleeps a bounded random
// extra delay.
func DirectWaitWithJitter(quota Quota, jitter Jitter) (*Direct, error) {
	return newDirect(quota, policyWaitJitter, jitter)
}

func newDirect(quota Quota, p policy, jitter Jitter) (*Direct, error) {
	if err := quota.validate(); err != nil {
		return nil, err
	}
	if err := jitter.validate(); err != nil {
		return nil, err
	}
	return &Direct{
		bucket: newGCRA(quota),
		policy: p,
		jitter: jitter,
		now:    time.Now,
	}, nil
}

// Check implements updraft.Guard.
func (d *Direct) Check(ctx context.Context, in updraft.Input) updraft.PredicateResult {
	switch d.policy {
	case policyDiscard:
		d.mu.Lock()
		ok := d.bucket.allow(d.now())
		d.mu.Unlock()
		if !ok {
			return updraft.False(updraft.Continue)
		}
		return updraft.True()
	default:
		if err := ctx.Err(); err != nil {
			return updraft.False(updraft.Error(err))
		}
		d.mu.Lock()
		delay := d.bucket.reserve(d.now())
		d.mu.Unlock()
		if err := waitAdmit(ctx, delay, d.policy, d.jitter); err != nil {
			// Return the booked cell so a cancelled caller does not
			// starve legitimate traffic.
			d.mu.Lock()
			d.bucket.unreserve()
			d.mu.Unlock()
			return updraft.False(updraft.Error(err))
		}
		return updraft.True()
	}
}

// waitAdmit sleeps out a reservation delay plus optional jitter. A non-nil
// error means the context was cancelled before admission.
func waitAdmit(ctx context.Context, delay time.Duration, p policy, jitter Jitter) error {
	if p == policyWaitJitter {
		delay += jitter.delay()
	}
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
