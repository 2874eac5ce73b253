package updraft

import (
	"context"

	"go.uber.org/zap"

	"github.com/quorik/updraft/types"
)

// ErrorHandler is the central seam for errors escaping a handler.
type ErrorHandler interface {
	HandleError(ctx context.Context, in Input, err error)
}

// ErrorHandlerFunc adapts a function to an ErrorHandler.
type ErrorHandlerFunc func(ctx context.Context, in Input, err error)

// HandleError calls fn.
func (fn ErrorHandlerFunc) HandleError(ctx context.Context, in Input, err error) {
	fn(ctx, in, err)
}

// LoggingErrorHandler logs the error and drops it. It is the default.
type LoggingErrorHandler struct {
	logger *zap.Logger
}

// NewLoggingErrorHandler creates an error handler writing to logger.
func NewLoggingErrorHandler(logger *zap.Logger) *LoggingErrorHandler {
	return &LoggingErrorHandler{logger: logger}
}

// HandleError logs the handler error together with the update ID and, for
// webhook dispatches, the request's correlation ID.
func (h *LoggingErrorHandler) HandleError(ctx context.Context, in Input, err error) {
	h.logger.Error("handler error",
		append(dispatchFields(ctx, in.Update.ID), zap.Error(err))...)
}

// dispatchFields builds the log fields common to one dispatched update.
func dispatchFields(ctx context.Context, updateID int64) []zap.Field {
	fields := []zap.Field{zap.Int64("update_id", updateID)}
	if id, ok := RequestID(ctx); ok {
		fields = append(fields, zap.String("request_id", id))
	}
	return fields
}

// Dispatcher owns an ordered handler list and the service context.
//
// For each update every handler runs in registration order, sequentially,
// stopping early on Stop or on an error. An error is routed to the
// configured ErrorHandler and processing of that one update ceases; the
// dispatcher itself stays ready for the next update. Handlers whose
// extractor yields nothing are silently skipped.
type Dispatcher struct {
	handlers     []Handler
	context      *Context
	errorHandler ErrorHandler
	logger       *zap.Logger
}

// DispatcherBuilder accumulates handlers before the dispatcher is built.
type DispatcherBuilder struct {
	handlers     []Handler
	errorHandler ErrorHandler
	logger       *zap.Logger
}

// NewDispatcher starts building a dispatcher.
func NewDispatcher() *DispatcherBuilder {
	return &DispatcherBuilder{}
}

// AddHandler appends a handler. Handlers run in the order they were added.
func (b *DispatcherBuilder) AddHandler(h Handler) *DispatcherBuilder {
	b.handlers = append(b.handlers, h)
	return b
}

// WithErrorHandler replaces the default log-and-drop error handler.
func (b *DispatcherBuilder) WithErrorHandler(h ErrorHandler) *DispatcherBuilder {
	b.errorHandler = h
	return b
}

// WithLogger sets the logger used for per-handler debug logs and the
// default error handler.
func (b *DispatcherBuilder) WithLogger(logger *zap.Logger) *DispatcherBuilder {
	b.logger = logger
	return b
}

// Build seals the context and creates the dispatcher. After this call the
// context rejects further registrations, making it safe to share read-only
// across concurrently dispatched updates.
func (b *DispatcherBuilder) Build(serviceContext *Context) *Dispatcher {
	if serviceContext == nil {
		serviceContext = NewContext()
	}
	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	errorHandler := b.errorHandler
	if errorHandler == nil {
		errorHandler = NewLoggingErrorHandler(logger)
	}
	serviceContext.seal()
	return &Dispatcher{
		handlers:     b.handlers,
		context:      serviceContext,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Context returns the sealed service context.
func (d *Dispatcher) Context() *Context {
	return d.context
}

// Dispatch runs the handler pipeline for one update and returns the
// pipeline result. Errors have already been routed to the ErrorHandler by
// the time Dispatch returns.
func (d *Dispatcher) Dispatch(ctx context.Context, update *types.Update) Result {
	in := Input{Update: update, Context: d.context}
	fields := dispatchFields(ctx, update.ID)
	for _, h := range d.handlers {
		d.logger.Debug("running handler",
			append([]zap.Field{zap.String("handler", handlerName(h))}, fields...)...)
		result := h.Handle(ctx, in)
		if err := result.Err(); err != nil {
			d.errorHandler.HandleError(ctx, in, err)
			return result
		}
		if result.Stops() {
			d.logger.Debug("handler stopped propagation",
				append([]zap.Field{zap.String("handler", handlerName(h))}, fields...)...)
			return result
		}
	}
	return Continue
}

// HandleUpdate implements UpdateHandler so a Dispatcher can be plugged
// directly into a transport.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update *types.Update) {
	d.Dispatch(ctx, update)
}

// UpdateHandler consumes updates produced by a transport.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *types.Update)
}

// Recover wraps a handler with a local error decorator: an error produced
// by the handler (or by its extractor) is converted to a result by fn
// before the dispatcher observes it, enabling per-handler recovery distinct
// from the pipeline-wide default.
func Recover(h Handler, fn func(ctx context.Context, in Input, err error) Result) Handler {
	return recoverHandler{inner: h, fn: fn}
}

type recoverHandler struct {
	inner Handler
	fn    func(ctx context.Context, in Input, err error) Result
}

func (h recoverHandler) Handle(ctx context.Context, in Input) Result {
	return h.HandleGated(ctx, in).Into()
}

func (h recoverHandler) HandleGated(ctx context.Context, in Input) ChainResult {
	result := gated(h.inner, ctx, in)
	if result.IsSkipped() {
		return result
	}
	folded := result.Into()
	if err := folded.Err(); err != nil {
		return Done(h.fn(ctx, in, err))
	}
	return Done(folded)
}
