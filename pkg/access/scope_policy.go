package access

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/scopes"
)

// ScopePolicy answers scope questions against the user's current plan.
// The plan is resolved on every call.
type ScopePolicy struct {
	plans   plans.Reader
	resolve plans.PlanIDResolver
}

// NewScopePolicy creates a ScopePolicy.
func NewScopePolicy(reg plans.Reader, resolve plans.PlanIDResolver) *ScopePolicy {
	return &ScopePolicy{plans: reg, resolve: resolve}
}

// HasScope reports whether the user's plan grants action.
func (p *ScopePolicy) HasScope(ctx context.Context, userID, action string) (bool, error) {
	plan, err := p.plan(ctx, userID)
	if err != nil {
		return false, err
	}
	return scopes.HasScope(plan.Scopes, action), nil
}

// UserScopes returns the scopes of the user's plan.
func (p *ScopePolicy) UserScopes(ctx context.Context, userID string) ([]string, error) {
	plan, err := p.plan(ctx, userID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(plan.Scopes), nil
}

// RequiredPlanForAction returns the plan to suggest for action.
func (p *ScopePolicy) RequiredPlanForAction(action string) (string, bool) {
	return p.plans.RecommendedPlanForAction(action)
}

func (p *ScopePolicy) plan(ctx context.Context, userID string) (plans.PlanDefinition, error) {
	plan, err := plans.Resolve(ctx, p.plans, p.resolve, userID)
	if err != nil {
		return plans.PlanDefinition{}, errors.Join(ErrPlanLookupFailed, err)
	}
	return plan, nil
}
