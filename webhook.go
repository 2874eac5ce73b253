package updraft

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quorik/updraft/types"
)

// WebhookOptions configures a WebhookServer.
type WebhookOptions struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Path is the URL path updates are POSTed to. Defaults to "/".
	Path string

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
}

func (o *WebhookOptions) setDefaults() {
	if o.Path == "" {
		o.Path = "/"
	}
	if o.ShutdownTimeout == 0 {
		o.ShutdownTimeout = 10 * time.Second
	}
}

// WebhookServer receives updates pushed by the Bot API over HTTP.
//
// A single (addr, path) endpoint accepts POSTs whose JSON body decodes to
// exactly one update; the HTTP response is held until dispatch of that
// update completes. Unlike LongPoll, concurrent requests dispatch in
// parallel; the server itself provides no cross-event ordering.
type WebhookServer struct {
	options WebhookOptions
	handler UpdateHandler
	logger  *zap.Logger
	srv     *http.Server
}

// NewWebhookServer creates a webhook transport delivering to handler.
func NewWebhookServer(handler UpdateHandler, options WebhookOptions, logger *zap.Logger) (*WebhookServer, error) {
	if handler == nil {
		return nil, ErrMissingHandler
	}
	options.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WebhookServer{
		options: options,
		handler: handler,
		logger:  logger,
	}
	s.srv = &http.Server{
		Addr:    options.Addr,
		Handler: s.router(),
	}
	return s, nil
}

// Handler returns the HTTP handler, useful for tests and for mounting the
// webhook into an existing server.
func (s *WebhookServer) Handler() http.Handler {
	return s.srv.Handler
}

func (s *WebhookServer) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Post(s.options.Path, s.handleUpdate)
	return r
}

// requestIDKey carries the per-request correlation ID in a dispatch
// context.
type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID the webhook transport attached to
// the dispatch context. The dispatcher and the default error handler add
// it to their log fields, tying all log lines of one request together.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

func (s *WebhookServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update types.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("malformed webhook body", zap.Error(err))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "failed to parse update: %s\n", err)
		return
	}

	id := uuid.NewString()
	s.logger.Debug("dispatching webhook update",
		zap.String("request_id", id),
		zap.Int64("update_id", update.ID))

	// The response is held until dispatch completes.
	s.handler.HandleUpdate(withRequestID(r.Context(), id), &update)
	w.WriteHeader(http.StatusOK)
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails. On cancellation the server shuts down gracefully, letting
// in-flight dispatches finish within ShutdownTimeout.
func (s *WebhookServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()
	s.logger.Info("webhook listening",
		zap.String("addr", s.options.Addr),
		zap.String("path", s.options.Path))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.options.ShutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}
