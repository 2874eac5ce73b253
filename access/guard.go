package access

import (
	"context"

	"github.com/quorik/updraft"
)

// Guard is an updraft.Guard denying updates their policy refuses. A
// denied update stops the pipeline, so later handlers never see it;
// WithDenied overrides that outcome.
type Guard struct {
	policy Policy
	denied updraft.Result
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithDenied sets the result a denied update folds into. Passing
// updraft.Continue lets later handlers process updates this guard's
// handler refused.
func WithDenied(result updraft.Result) GuardOption {
	return func(g *Guard) {
		g.denied = result
	}
}

// NewGuard creates a guard enforcing the given policy.
func NewGuard(policy Policy, opts ...GuardOption) *Guard {
	g := &Guard{policy: policy, denied: updraft.Stop}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check implements updraft.Guard.
func (g *Guard) Check(ctx context.Context, in updraft.Input) updraft.PredicateResult {
	granted, err := g.policy.IsGranted(ctx, in.Update)
	if err != nil {
		return updraft.False(updraft.Error(err))
	}
	if !granted {
		return updraft.False(g.denied)
	}
	return updraft.True()
}
