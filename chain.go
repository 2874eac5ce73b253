package updraft

import "context"

// ChainStrategy fixes how a Chain walks its handlers.
type ChainStrategy int

const (
	// FirstFound runs handlers in order until one actually runs;
	// that handler's result is the chain's result.
	FirstFound ChainStrategy = iota

	// All runs every matching handler in order, stopping only on the
	// first error.
	All
)

// Chain groups several independently gated handlers into one handler.
//
// With FirstFound the chain behaves like "try these in order, use the first
// match"; with All it behaves like "run every matching side effect". In both
// cases handlers whose extractor yields nothing are bypassed as absent.
type Chain struct {
	strategy ChainStrategy
	handlers []Handler
}

// NewChain creates a chain with the given strategy.
func NewChain(strategy ChainStrategy) *Chain {
	return &Chain{strategy: strategy}
}

// ChainOnce creates a FirstFound chain.
func ChainOnce() *Chain { return NewChain(FirstFound) }

// ChainAll creates an All chain.
func ChainAll() *Chain { return NewChain(All) }

// With appends a handler. Handlers run in the order they were added.
func (c *Chain) With(h Handler) *Chain {
	c.handlers = append(c.handlers, h)
	return c
}

// Handle implements Handler.
func (c *Chain) Handle(ctx context.Context, in Input) Result {
	return c.HandleGated(ctx, in).Into()
}

// HandleGated implements GatedHandler, so chains nest: a chain none of
// whose handlers matched reports Skipped to an enclosing chain.
func (c *Chain) HandleGated(ctx context.Context, in Input) ChainResult {
	matched := false
	stopped := false
	for _, h := range c.handlers {
		result := gated(h, ctx, in)
		if result.IsSkipped() {
			continue
		}
		if !result.IsDone() {
			// Extraction failed before the handler body ran.
			return result
		}
		switch c.strategy {
		case FirstFound:
			return result
		case All:
			matched = true
			folded := result.Into()
			if folded.Err() != nil {
				return result
			}
			if folded.Stops() {
				stopped = true
			}
		}
	}
	if !matched {
		return Skipped()
	}
	if stopped {
		return Done(Stop)
	}
	return Done(Continue)
}
