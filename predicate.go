package updraft

import (
	"context"

	"github.com/quorik/updraft/types"
)

// Guard decides whether a wrapped handler may run for an update.
type Guard interface {
	Check(ctx context.Context, in Input) PredicateResult
}

// GuardFunc adapts a function to a Guard.
type GuardFunc func(ctx context.Context, in Input) PredicateResult

// Check calls fn.
func (fn GuardFunc) Check(ctx context.Context, in Input) PredicateResult {
	return fn(ctx, in)
}

// Predicate gates a handler behind a guard.
//
// Guard and handler extract independently from the same update. A True
// verdict runs the handler and returns its result; a False verdict returns
// the guard-supplied replacement without running the handler.
type Predicate struct {
	guard   Guard
	handler Handler
}

// NewPredicate decorates handler with guard.
func NewPredicate(guard Guard, handler Handler) *Predicate {
	return &Predicate{guard: guard, handler: handler}
}

// Handle implements Handler.
func (p *Predicate) Handle(ctx context.Context, in Input) Result {
	return p.HandleGated(ctx, in).Into()
}

// HandleGated implements GatedHandler. A False verdict carrying Continue
// reads as Skipped inside a chain, so unmatched guarded handlers are
// bypassed rather than counted as run.
func (p *Predicate) HandleGated(ctx context.Context, in Input) ChainResult {
	verdict := p.guard.Check(ctx, in)
	if !verdict.Allowed() {
		replacement := verdict.Result()
		if !replacement.Stops() {
			return Skipped()
		}
		return Done(replacement)
	}
	return gated(p.handler, ctx, in)
}

// GuardBy is a shortcut for NewPredicate(guard, handler).
func GuardBy(handler Handler, guard Guard) Handler {
	return NewPredicate(guard, handler)
}

// TypedGuard builds a guard from an extractor and a verdict function.
// An update the extractor does not match yields False(Continue); an
// extraction failure surfaces as False(Error(err)).
func TypedGuard[T any](extract Extractor[T], fn func(ctx context.Context, value T) PredicateResult) Guard {
	return GuardFunc(func(ctx context.Context, in Input) PredicateResult {
		value, ok, err := extract(ctx, in)
		if err != nil {
			return False(Error(err))
		}
		if !ok {
			return False(Continue)
		}
		return fn(ctx, value)
	})
}

// CommandGuard matches a specific bot command by name (with leading slash).
// Non-command updates and other commands yield False(Continue), letting the
// rest of the pipeline see the update.
func CommandGuard(name string) Guard {
	return TypedGuard(ExtractCommand, func(_ context.Context, cmd *types.Command) PredicateResult {
		if cmd.Name == name {
			return True()
		}
		return False(Continue)
	})
}

// OnCommand runs fn for a specific command, consuming the update on a match.
// A nil error from fn stops propagation; an error is surfaced.
func OnCommand(name string, fn func(ctx context.Context, in Input, cmd *types.Command) error) Handler {
	return NewPredicate(
		CommandGuard(name),
		Typed(ExtractCommand, func(ctx context.Context, in Input, cmd *types.Command) Result {
			if err := fn(ctx, in, cmd); err != nil {
				return Error(err)
			}
			return Stop
		}),
	)
}

// OnMessage runs fn for every update carrying a message.
// A nil error from fn stops propagation; an error is surfaced.
func OnMessage(fn func(ctx context.Context, in Input, msg *types.Message) error) Handler {
	return Typed(ExtractMessage, func(ctx context.Context, in Input, msg *types.Message) Result {
		if err := fn(ctx, in, msg); err != nil {
			return Error(err)
		}
		return Stop
	})
}

// OnCallbackQuery runs fn for every callback query.
// A nil error from fn stops propagation; an error is surfaced.
func OnCallbackQuery(fn func(ctx context.Context, in Input, query *types.CallbackQuery) error) Handler {
	return Typed(ExtractCallbackQuery, func(ctx context.Context, in Input, query *types.CallbackQuery) Result {
		if err := fn(ctx, in, query); err != nil {
			return Error(err)
		}
		return Stop
	})
}
