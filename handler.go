package updraft

import (
	"context"
	"fmt"
)

// Handler processes one update.
//
// Handlers are stored type-erased behind this interface; typed handlers are
// built with Typed, which pairs an Extractor with a function over the
// extracted value.
type Handler interface {
	Handle(ctx context.Context, in Input) Result
}

// HandlerFunc adapts a plain function to a whole-envelope Handler.
type HandlerFunc func(ctx context.Context, in Input) Result

// Handle calls fn.
func (fn HandlerFunc) Handle(ctx context.Context, in Input) Result {
	return fn(ctx, in)
}

// GatedHandler is implemented by handlers that can report whether an update
// matched their extractor. Chain uses it to tell "did not match" apart from
// "ran and produced Continue".
type GatedHandler interface {
	Handler
	HandleGated(ctx context.Context, in Input) ChainResult
}

// typedHandler pairs an extractor with a function over the extracted value.
type typedHandler[T any] struct {
	extract Extractor[T]
	fn      func(ctx context.Context, in Input, value T) Result
}

// Typed builds a handler that runs fn only when extract yields a value.
//
// When the extractor reports no value the update is silently skipped
// (Continue). An extraction error stops propagation and reaches the
// dispatcher's ErrorHandler.
func Typed[T any](extract Extractor[T], fn func(ctx context.Context, in Input, value T) Result) Handler {
	return typedHandler[T]{extract: extract, fn: fn}
}

func (h typedHandler[T]) Handle(ctx context.Context, in Input) Result {
	return h.HandleGated(ctx, in).Into()
}

func (h typedHandler[T]) HandleGated(ctx context.Context, in Input) ChainResult {
	value, ok, err := h.extract(ctx, in)
	if err != nil {
		return PreError(err)
	}
	if !ok {
		return Skipped()
	}
	return Done(h.fn(ctx, in, value))
}

// Named attaches a label to a handler for dispatch debug logs.
func Named(name string, h Handler) Handler {
	return namedHandler{Handler: h, label: name}
}

type namedHandler struct {
	Handler
	label string
}

func (h namedHandler) HandlerName() string { return h.label }

func (h namedHandler) HandleGated(ctx context.Context, in Input) ChainResult {
	return gated(h.Handler, ctx, in)
}

// gated runs a handler through its gate when it has one; a plain handler
// always counts as having run.
func gated(h Handler, ctx context.Context, in Input) ChainResult {
	if g, ok := h.(GatedHandler); ok {
		return g.HandleGated(ctx, in)
	}
	return Done(h.Handle(ctx, in))
}

// handlerName returns the label of a named handler or its dynamic type.
func handlerName(h Handler) string {
	type named interface{ HandlerName() string }
	if n, ok := h.(named); ok {
		return n.HandlerName()
	}
	return fmt.Sprintf("%T", h)
}
