package plans_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/plans"
)

func newDefaultRegistry(t *testing.T) *plans.Registry {
	t.Helper()
	reg, err := plans.NewRegistry(context.Background(), plans.DefaultSource())
	require.NoError(t, err)
	return reg
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	t.Run("default catalog", func(t *testing.T) {
		t.Parallel()
		reg := newDefaultRegistry(t)
		assert.Equal(t, plans.PlanFree, reg.DefaultPlanID())
		assert.Equal(t, "2024.06", reg.Version())
		assert.False(t, reg.LastUpdated().IsZero())
		assert.Equal(t, []string{plans.PlanGuest, plans.PlanFree, plans.PlanPremium, plans.PlanEnterprise}, reg.PlanIDs())
	})

	t.Run("source error", func(t *testing.T) {
		t.Parallel()
		src := plans.SourceFunc(func(context.Context) (plans.Catalog, error) {
			return plans.Catalog{}, errors.New("remote config down")
		})
		reg, err := plans.NewRegistry(context.Background(), src)
		assert.ErrorIs(t, err, plans.ErrFailedToLoadCatalog)
		assert.Nil(t, reg)
	})

	t.Run("default plan override", func(t *testing.T) {
		t.Parallel()
		reg, err := plans.NewRegistry(context.Background(), plans.DefaultSource(), plans.WithDefaultPlan(plans.PlanGuest))
		require.NoError(t, err)
		assert.Equal(t, plans.PlanGuest, reg.DefaultPlanID())
	})

	t.Run("unknown default plan override", func(t *testing.T) {
		t.Parallel()
		_, err := plans.NewRegistry(context.Background(), plans.DefaultSource(), plans.WithDefaultPlan("GOLD"))
		assert.ErrorIs(t, err, plans.ErrDefaultPlanNotFound)
	})
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Parallel()

	valid := func() plans.Catalog {
		return plans.Catalog{
			DefaultPlanID: "a",
			Priority:      []string{"a"},
			Plans:         []plans.PlanDefinition{{ID: "a", Scopes: []string{"x.*"}, Quotas: map[string]int64{"k.day": 1}}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*plans.Catalog)
		err    error
	}{
		{"empty catalog", func(c *plans.Catalog) { c.Plans = nil }, plans.ErrEmptyCatalog},
		{"empty id", func(c *plans.Catalog) { c.Plans[0].ID = "" }, plans.ErrInvalidPlanConfiguration},
		{"duplicate id", func(c *plans.Catalog) { c.Plans = append(c.Plans, c.Plans[0]) }, plans.ErrInvalidPlanConfiguration},
		{"bad scope", func(c *plans.Catalog) { c.Plans[0].Scopes = []string{"x..y"} }, plans.ErrInvalidPlanConfiguration},
		{"bad limit", func(c *plans.Catalog) { c.Plans[0].Quotas["k.day"] = -5 }, plans.ErrInvalidPlanConfiguration},
		{"missing default", func(c *plans.Catalog) { c.DefaultPlanID = "b" }, plans.ErrDefaultPlanNotFound},
		{"empty priority", func(c *plans.Catalog) { c.Priority = nil }, plans.ErrInvalidPlanConfiguration},
		{"unknown priority", func(c *plans.Catalog) { c.Priority = []string{"a", "b"} }, plans.ErrInvalidPlanConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(&c)
			_, err := plans.NewRegistry(context.Background(), plans.NewStaticSource(c))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRegistry_Plan(t *testing.T) {
	t.Parallel()
	reg := newDefaultRegistry(t)

	free, ok := reg.Plan(plans.PlanFree)
	require.True(t, ok)
	assert.Equal(t, int64(5), free.Quotas["analysis.day"])
	assert.True(t, free.IsFree())

	_, ok = reg.Plan("GOLD")
	assert.False(t, ok)

	t.Run("returns copies", func(t *testing.T) {
		p, _ := reg.Plan(plans.PlanPremium)
		p.Scopes[0] = "tampered"
		p.Quotas["analysis.day"] = 0
		p.Pricing.Monthly.Amount = 1

		again, _ := reg.Plan(plans.PlanPremium)
		assert.Equal(t, "memory.*", again.Scopes[0])
		assert.Equal(t, int64(50), again.Quotas["analysis.day"])
		assert.Equal(t, int64(499), again.Pricing.Monthly.Amount)
	})
}

func TestRegistry_ResolvePlan(t *testing.T) {
	t.Parallel()
	reg := newDefaultRegistry(t)

	assert.Equal(t, plans.PlanPremium, reg.ResolvePlan(plans.PlanPremium).ID)
	assert.Equal(t, plans.PlanFree, reg.ResolvePlan("").ID)
	assert.Equal(t, plans.PlanFree, reg.ResolvePlan("LEGACY_GOLD").ID)
}

func TestRegistry_RecommendedPlanForAction(t *testing.T) {
	t.Parallel()
	reg := newDefaultRegistry(t)

	tests := []struct {
		action string
		plan   string
		found  bool
	}{
		{"api.access", plans.PlanEnterprise, true},
		{"backup.create", plans.PlanPremium, true},
		{"memory.create", plans.PlanFree, true},
		// FREE_USER is checked before GUEST.
		{"memory.view", plans.PlanFree, true},
		{"quiz.take", plans.PlanFree, true},
		{"export.pdf", plans.PlanFree, true},
		{"admin.reports", plans.PlanEnterprise, true},
		{"billing.refund", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			t.Parallel()
			plan, found := reg.RecommendedPlanForAction(tt.action)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.plan, plan)
		})
	}
}

func TestRegistry_RecommendedPlanForAction_UsesPriorityNotCatalogOrder(t *testing.T) {
	t.Parallel()

	catalog := plans.Catalog{
		DefaultPlanID: "small",
		Priority:      []string{"big", "small"},
		Plans: []plans.PlanDefinition{
			{ID: "small", Tier: 0, Scopes: []string{"notes.*"}},
			{ID: "big", Tier: 1, Scopes: []string{"notes.*", "api.*"}},
		},
	}
	reg, err := plans.NewRegistry(context.Background(), plans.NewStaticSource(catalog))
	require.NoError(t, err)

	for range 50 {
		plan, ok := reg.RecommendedPlanForAction("notes.write")
		require.True(t, ok)
		require.Equal(t, "big", plan)
	}
}

func TestRegistry_NextTier(t *testing.T) {
	t.Parallel()
	reg := newDefaultRegistry(t)

	next, ok := reg.NextTier(plans.PlanGuest)
	assert.True(t, ok)
	assert.Equal(t, plans.PlanFree, next)

	next, ok = reg.NextTier(plans.PlanFree)
	assert.True(t, ok)
	assert.Equal(t, plans.PlanPremium, next)

	next, ok = reg.NextTier(plans.PlanPremium)
	assert.True(t, ok)
	assert.Equal(t, plans.PlanEnterprise, next)

	_, ok = reg.NextTier(plans.PlanEnterprise)
	assert.False(t, ok)

	next, ok = reg.NextTier("unknown")
	assert.True(t, ok)
	assert.Equal(t, plans.PlanPremium, next, "unknown ids behave like the default plan")
}
