package access

import (
	"context"
	"errors"

	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/quota"
)

// Read-only getters. None of them consume quota or change toggles.

// QuotaStatus returns the remaining units for key, quota.Unbounded when unlimited.
func (g *Guard) QuotaStatus(ctx context.Context, userID, key string) (int64, error) {
	return g.quotas.Remaining(ctx, userID, key)
}

// QuotaInfo returns a snapshot for key, or nil when the user's plan lacks it.
func (g *Guard) QuotaInfo(ctx context.Context, userID, key string) (*quota.Info, error) {
	return g.quotas.Info(ctx, userID, key)
}

// UserScopes returns the scopes granted by the user's plan.
func (g *Guard) UserScopes(ctx context.Context, userID string) ([]string, error) {
	return g.scopes.UserScopes(ctx, userID)
}

// FeatureInfo returns the stored toggle, or nil when key is unknown.
func (g *Guard) FeatureInfo(ctx context.Context, key string) (*feature.Info, error) {
	info, found, err := feature.Lookup(ctx, g.features, key)
	if err != nil {
		return nil, errors.Join(ErrFeatureCheckFailed, err)
	}
	if !found {
		return nil, nil
	}
	return &info, nil
}

// AllFeatures returns the stored toggles, without emergency inversion.
func (g *Guard) AllFeatures(ctx context.Context) (map[string]bool, error) {
	all, err := g.features.All(ctx)
	if err != nil {
		return nil, errors.Join(ErrFeatureCheckFailed, err)
	}
	return all, nil
}

// IsFeatureEnabled returns the effective state of the feature guarded by key.
// Unknown keys read as stored false, so an unknown emergency key means enabled.
func (g *Guard) IsFeatureEnabled(ctx context.Context, key string) (bool, error) {
	on, err := g.features.IsOn(ctx, key)
	if err != nil {
		return false, errors.Join(ErrFeatureCheckFailed, err)
	}
	return EffectiveEnabled(key, on), nil
}

// UpgradeRecommendation returns the plan to suggest for action.
func (g *Guard) UpgradeRecommendation(action string) (string, bool) {
	return g.scopes.RequiredPlanForAction(action)
}

// CurrentPlan returns the user's resolved plan.
func (g *Guard) CurrentPlan(ctx context.Context, userID string) (plans.PlanDefinition, error) {
	plan, err := plans.Resolve(ctx, g.plans, g.resolve, userID)
	if err != nil {
		return plans.PlanDefinition{}, errors.Join(ErrPlanLookupFailed, err)
	}
	return plan, nil
}

// HasPlanFeature reports the plan-level default for key. Missing keys are false.
func (g *Guard) HasPlanFeature(ctx context.Context, userID, key string) (bool, error) {
	plan, err := g.CurrentPlan(ctx, userID)
	if err != nil {
		return false, err
	}
	return plan.Features[key], nil
}

// Plans exposes the registry the guard decides against.
func (g *Guard) Plans() plans.Reader {
	return g.plans
}

// ResetUser clears all quota counters of the user, e.g. on logout.
func (g *Guard) ResetUser(ctx context.Context, userID string) error {
	if err := g.quotas.ResetUser(ctx, userID); err != nil {
		return errors.Join(ErrQuotaCheckFailed, err)
	}
	return nil
}
