package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/quota"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	t.Parallel()
	runStoreContract(t, func(t *testing.T) (quota.Store, func(time.Duration)) {
		mr, client := setupMiniRedis(t)
		return quota.NewRedisStore(client), mr.FastForward
	})
}

func TestRedisStore_KeyLayoutAndTTL(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := quota.NewRedisStore(client, quota.WithRedisPrefix("wellness:q"))

	ok, u, err := store.Consume(ctx, "user-1", "analysis.day", 1, 5, quota.DayPeriod)
	require.NoError(t, err)
	require.True(t, ok)

	val, err := mr.Get("wellness:q:user-1:analysis.day")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
	assert.Equal(t, quota.DayPeriod, mr.TTL("wellness:q:user-1:analysis.day"))
	assert.WithinDuration(t, time.Now().Add(quota.DayPeriod), u.ResetAt, time.Minute)
}

func TestRedisStore_ResetUserEscapesPattern(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, client := setupMiniRedis(t)
	store := quota.NewRedisStore(client)

	_, _, err := store.Consume(ctx, "a*", "analysis.day", 1, 5, quota.DayPeriod)
	require.NoError(t, err)
	_, _, err = store.Consume(ctx, "ab", "analysis.day", 1, 5, quota.DayPeriod)
	require.NoError(t, err)

	require.NoError(t, store.ResetUser(ctx, "a*"))

	u, err := store.Usage(ctx, "ab", "analysis.day")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.Used)

	u, err = store.Usage(ctx, "a*", "analysis.day")
	require.NoError(t, err)
	assert.Equal(t, int64(0), u.Used)
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mr, client := setupMiniRedis(t)
	store := quota.NewRedisStore(client)
	mr.Close()

	_, _, err := store.Consume(ctx, "u1", "analysis.day", 1, 5, quota.DayPeriod)
	assert.ErrorIs(t, err, quota.ErrStoreUnavailable)

	_, err = store.Usage(ctx, "u1", "analysis.day")
	assert.ErrorIs(t, err, quota.ErrStoreUnavailable)
}
