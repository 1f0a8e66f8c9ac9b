package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/logger"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	attr := logger.Group("quota", slog.String("key", "analysis.day"), slog.Int("limit", 5))
	require.Equal(t, "quota", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	assert.Len(t, attr.Value.Group(), 2)
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())
	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestStringAttrs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		fn   func(string) slog.Attr
		key  string
	}{
		{"user id", logger.UserID, "user_id"},
		{"plan id", logger.PlanID, "plan_id"},
		{"action", logger.Action, "action"},
		{"quota key", logger.QuotaKey, "quota_key"},
		{"flag key", logger.FlagKey, "flag_key"},
		{"reason", logger.Reason, "reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attr := tt.fn("value")
			assert.Equal(t, tt.key, attr.Key)
			assert.Equal(t, "value", attr.Value.String())
			assert.True(t, tt.fn("").Equal(slog.Attr{}))
		})
	}
}

func TestComponentAndEvent(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "component", logger.Component("paywall").Key)
	assert.Equal(t, "event", logger.Event("fail_open").Key)
}
