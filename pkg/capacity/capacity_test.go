package capacity_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/access"
	"github.com/dmitrymomot/entitlements/pkg/capacity"
	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/quota"
)

type fixture struct {
	capacity    *capacity.Guard
	access      *access.Guard
	quotas      *quota.Policy
	assignments *plans.Assignments
	flags       *feature.MemoryProvider
	userID      string
}

func newFixture(t *testing.T, src plans.Source, planID string) fixture {
	t.Helper()
	reg, err := plans.NewRegistry(context.Background(), src)
	require.NoError(t, err)

	assignments := plans.NewAssignments()
	userID := uuid.NewString()
	assignments.SetUserPlan(userID, planID)

	flags := feature.NewMemoryProviderFromMap(map[string]bool{
		capacity.FlagAnalysisOff: false,
		capacity.FlagExportOff:   false,
		capacity.FlagBackup:      true,
	})
	policy := quota.NewPolicy(reg, assignments.Resolver(), nil)
	ag := access.NewGuard(reg, assignments.Resolver(), policy, flags)

	return fixture{
		capacity:    capacity.NewGuard(ag),
		access:      ag,
		quotas:      policy,
		assignments: assignments,
		flags:       flags,
		userID:      userID,
	}
}

func (f fixture) consume(t *testing.T, key string, n int64) {
	t.Helper()
	if n == 0 {
		return
	}
	ok, err := f.quotas.CheckAndConsume(context.Background(), f.userID, key, n)
	require.NoError(t, err)
	require.True(t, ok, "consume %d of %s", n, key)
}

func (f fixture) remaining(t *testing.T, key string) int64 {
	t.Helper()
	n, err := f.access.QuotaStatus(context.Background(), f.userID, key)
	require.NoError(t, err)
	return n
}

func unlimitedStorageSource() plans.Source {
	return plans.NewStaticSource(plans.Catalog{
		Version:       "test",
		DefaultPlanID: "UNLIMITED",
		Priority:      []string{"UNLIMITED"},
		Plans: []plans.PlanDefinition{{
			ID:     "UNLIMITED",
			Name:   "Unlimited",
			Scopes: []string{"memory.*"},
			Quotas: map[string]int64{
				capacity.QuotaSnaps:   plans.Unlimited,
				capacity.QuotaStorage: plans.Unlimited,
			},
		}},
	})
}

func TestCanAddSnapWithSize(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name        string
		src         plans.Source
		plan        string
		usedSnaps   int64
		sizeMB      int64
		allowed     bool
		reason      access.DenyReason
		reasonQuota string
	}{
		{name: "free under limit", plan: plans.PlanFree, sizeMB: 500, allowed: true},
		{name: "free exactly at limit", plan: plans.PlanFree, sizeMB: 1024, allowed: true},
		{name: "free over storage limit", plan: plans.PlanFree, sizeMB: 2000, reason: access.ReasonQuotaExceeded, reasonQuota: capacity.QuotaStorage},
		{name: "free snaps exhausted", plan: plans.PlanFree, usedSnaps: 50, sizeMB: 1, reason: access.ReasonQuotaExceeded, reasonQuota: capacity.QuotaSnaps},
		{name: "guest lacks create scope", plan: plans.PlanGuest, sizeMB: 1, reason: access.ReasonMissingScope},
		{name: "premium ten gigabytes", plan: plans.PlanPremium, sizeMB: 10 * 1024, allowed: true},
		{name: "premium over", plan: plans.PlanPremium, sizeMB: 10*1024 + 1, reason: access.ReasonQuotaExceeded, reasonQuota: capacity.QuotaStorage},
		{name: "enterprise large", plan: plans.PlanEnterprise, sizeMB: 50_000, allowed: true},
		{name: "enterprise over", plan: plans.PlanEnterprise, sizeMB: 200_000, reason: access.ReasonQuotaExceeded, reasonQuota: capacity.QuotaStorage},
		{name: "unlimited storage skips size check", src: unlimitedStorageSource(), plan: "UNLIMITED", sizeMB: 1 << 40, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			src := tt.src
			if src == nil {
				src = plans.DefaultSource()
			}
			f := newFixture(t, src, tt.plan)
			f.consume(t, capacity.QuotaSnaps, tt.usedSnaps)

			res, err := f.capacity.CanAddSnapWithSize(ctx, f.userID, tt.sizeMB)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, res.Allowed)
			assert.Equal(t, tt.reason, res.Reason)
			if tt.reasonQuota != "" {
				require.NotNil(t, res.Quota)
				assert.Equal(t, tt.reasonQuota, res.Quota.Key)
			}
		})
	}
}

func TestCanAddSnapWithSize_StorageLimitDetails(t *testing.T) {
	t.Parallel()
	f := newFixture(t, plans.DefaultSource(), plans.PlanFree)

	res, err := f.capacity.CanAddSnapWithSize(context.Background(), f.userID, 2000)
	require.NoError(t, err)
	require.Equal(t, access.ReasonQuotaExceeded, res.Reason)
	require.NotNil(t, res.Quota)
	assert.Equal(t, int64(1), res.Quota.Limit)
	assert.Equal(t, int64(2000), res.RequestedMB)
	assert.Contains(t, res.Message, "2000 MB")
	assert.Contains(t, res.Message, "1024 MB")

	// Snap capacity is untouched by the checks.
	assert.Equal(t, int64(50), f.remaining(t, capacity.QuotaSnaps))
}

func TestSnaps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, plans.DefaultSource(), plans.PlanFree)

	res, err := f.capacity.CanAddSnap(ctx, f.userID)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(50), f.remaining(t, capacity.QuotaSnaps))

	for range 50 {
		res, err = f.capacity.RecordSnap(ctx, f.userID)
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}

	res, err = f.capacity.CanAddSnap(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)

	res, err = f.capacity.RecordSnap(ctx, f.userID)
	require.NoError(t, err)
	assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)
	assert.Equal(t, int64(0), f.remaining(t, capacity.QuotaSnaps))
}

func TestAIAnalysis(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("daily limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanFree)

		for range 5 {
			res, err := f.capacity.CanRunAIAnalysis(ctx, f.userID)
			require.NoError(t, err)
			require.True(t, res.Allowed)

			res, err = f.capacity.ConsumeAIAnalysis(ctx, f.userID)
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}

		res, err := f.capacity.CanRunAIAnalysis(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)

		res, err = f.capacity.ConsumeAIAnalysis(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)
	})

	t.Run("emergency switch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanPremium)
		require.NoError(t, f.flags.Set(ctx, capacity.FlagAnalysisOff, true))

		res, err := f.capacity.ConsumeAIAnalysis(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonFeatureOff, res.Reason)
		assert.Equal(t, int64(50), f.remaining(t, capacity.QuotaAnalysis))
	})

	t.Run("guest has no analysis scope", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanGuest)

		res, err := f.capacity.CanRunAIAnalysis(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonMissingScope, res.Reason)
		assert.Equal(t, plans.PlanFree, res.RecommendedPlan)
	})
}

func TestExport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("free monthly exports", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanFree)

		for _, format := range []string{"pdf", "csv", "json"} {
			res, err := f.capacity.CanExport(ctx, f.userID, format)
			require.NoError(t, err)
			require.True(t, res.Allowed, format)

			res, err = f.capacity.RecordExport(ctx, f.userID, format)
			require.NoError(t, err)
			require.True(t, res.Allowed, format)
		}

		res, err := f.capacity.CanExport(ctx, f.userID, "pdf")
		require.NoError(t, err)
		assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)
		assert.Contains(t, res.Message, "resets at start of month")
	})

	t.Run("premium unlimited", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanPremium)
		for range 10 {
			res, err := f.capacity.RecordExport(ctx, f.userID, "pdf")
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}
	})

	t.Run("guest", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanGuest)
		res, err := f.capacity.CanExport(ctx, f.userID, "pdf")
		require.NoError(t, err)
		assert.Equal(t, access.ReasonMissingScope, res.Reason)
	})

	t.Run("kill switch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanPremium)
		require.NoError(t, f.flags.Set(ctx, capacity.FlagExportOff, true))
		res, err := f.capacity.CanExport(ctx, f.userID, "pdf")
		require.NoError(t, err)
		assert.Equal(t, access.ReasonFeatureOff, res.Reason)
	})
}

func TestBackup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("free has no backup scope", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanFree)
		res, err := f.capacity.CanBackup(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonMissingScope, res.Reason)
		assert.Equal(t, plans.PlanPremium, res.RecommendedPlan)
	})

	t.Run("premium monthly limit", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanPremium)
		for range 30 {
			res, err := f.capacity.ConsumeBackup(ctx, f.userID)
			require.NoError(t, err)
			require.True(t, res.Allowed)
		}
		res, err := f.capacity.CanBackup(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonQuotaExceeded, res.Reason)
	})

	t.Run("cloud toggle off", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, plans.DefaultSource(), plans.PlanPremium)
		require.NoError(t, f.flags.Set(ctx, capacity.FlagBackup, false))
		res, err := f.capacity.ConsumeBackup(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, access.ReasonFeatureOff, res.Reason)
		assert.Equal(t, int64(30), f.remaining(t, capacity.QuotaBackup))
	})
}
