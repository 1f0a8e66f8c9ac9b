package access_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/access"
	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/quota"
)

type fixture struct {
	guard       *access.Guard
	registry    *plans.Registry
	assignments *plans.Assignments
	flags       *feature.MemoryProvider
	userID      string
}

func newFixture(t *testing.T, planID string, opts ...access.GuardOption) fixture {
	t.Helper()
	reg, err := plans.NewRegistry(context.Background(), plans.DefaultSource())
	require.NoError(t, err)

	assignments := plans.NewAssignments()
	userID := uuid.NewString()
	assignments.SetUserPlan(userID, planID)

	flags := feature.NewMemoryProviderFromMap(map[string]bool{
		"analysis.ai":            true,
		"export":                 true,
		"emergency.analysis.off": false,
		"emergency.export.off":   false,
	})

	policy := quota.NewPolicy(reg, assignments.Resolver(), quota.NewMemoryStore())
	guard := access.NewGuard(reg, assignments.Resolver(), policy, flags, opts...)

	return fixture{
		guard:       guard,
		registry:    reg,
		assignments: assignments,
		flags:       flags,
		userID:      userID,
	}
}

func (f fixture) remaining(t *testing.T, key string) int64 {
	t.Helper()
	n, err := f.guard.QuotaStatus(context.Background(), f.userID, key)
	require.NoError(t, err)
	return n
}

var errBackend = errors.New("backend offline")

// failingProvider fails every call.
type failingProvider struct{}

func (failingProvider) IsOn(context.Context, string) (bool, error) { return false, errBackend }
func (failingProvider) GetFlag(context.Context, string) (*feature.Flag, error) { return nil, errBackend }
func (failingProvider) All(context.Context) (map[string]bool, error) { return nil, errBackend }
func (failingProvider) Set(context.Context, string, bool) error { return errBackend }
func (failingProvider) Delete(context.Context, string) error { return errBackend }
func (failingProvider) Close() error { return nil }
