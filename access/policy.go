package access

import (
	"context"

	"github.com/quorik/updraft/types"
)

// Rule pairs a principal with a grant decision.
type Rule struct {
	principal Principal
	granted   bool
}

// Allow grants access to updates matching the principal.
func Allow(p Principal) Rule {
	return Rule{principal: p, granted: true}
}

// Deny refuses access to updates matching the principal.
func Deny(p Principal) Rule {
	return Rule{principal: p, granted: false}
}

// Policy decides whether an update may proceed.
type Policy interface {
	IsGranted(ctx context.Context, update *types.Update) (bool, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, update *types.Update) (bool, error)

// IsGranted implements Policy.
func (f PolicyFunc) IsGranted(ctx context.Context, update *types.Update) (bool, error) {
	return f(ctx, update)
}

// InMemoryPolicy evaluates a fixed rule list in order; the first matching
// rule wins. Updates matching no rule are denied.
type InMemoryPolicy struct {
	rules []Rule
}

// NewInMemoryPolicy creates a policy from the given rules.
func NewInMemoryPolicy(rules ...Rule) *InMemoryPolicy {
	return &InMemoryPolicy{rules: rules}
}

// IsGranted implements Policy.
func (p *InMemoryPolicy) IsGranted(_ context.Context, update *types.Update) (bool, error) {
	for _, rule := range p.rules {
		if rule.principal(update) {
			return rule.granted, nil
		}
	}
	return false, nil
}
