package quota_test

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entitlements/pkg/quota"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// storeFactory returns a fresh store and a function that moves its time forward.
type storeFactory func(t *testing.T) (quota.Store, func(time.Duration))

func runStoreContract(t *testing.T, newStore storeFactory) {
	t.Helper()
	ctx := context.Background()
	const day = 24 * time.Hour

	t.Run("missing counter reads as zero", func(t *testing.T) {
		store, _ := newStore(t)
		u, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, quota.Usage{}, u)
	})

	t.Run("consume within limit", func(t *testing.T) {
		store, _ := newStore(t)
		ok, u, err := store.Consume(ctx, "u1", "analysis.day", 2, 5, day)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(2), u.Used)
		assert.False(t, u.ResetAt.IsZero())

		ok, u, err = store.Consume(ctx, "u1", "analysis.day", 3, 5, day)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(5), u.Used)

		got, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Used)
	})

	t.Run("denial leaves counter untouched", func(t *testing.T) {
		store, _ := newStore(t)
		_, _, err := store.Consume(ctx, "u1", "analysis.day", 4, 5, day)
		require.NoError(t, err)

		ok, u, err := store.Consume(ctx, "u1", "analysis.day", 2, 5, day)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(4), u.Used)

		got, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, int64(4), got.Used)
	})

	t.Run("amount above limit on fresh counter", func(t *testing.T) {
		store, _ := newStore(t)
		ok, u, err := store.Consume(ctx, "u1", "analysis.day", 6, 5, day)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(0), u.Used)

		existed, err := store.Reset(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.False(t, existed, "denied consume must not create a counter")
	})

	t.Run("huge amount is denied without touching the counter", func(t *testing.T) {
		store, _ := newStore(t)
		_, _, err := store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
		require.NoError(t, err)

		ok, u, err := store.Consume(ctx, "u1", "analysis.day", math.MaxInt64, 5, day)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, int64(1), u.Used)

		for range 4 {
			ok, _, err := store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
			require.NoError(t, err)
			require.True(t, ok)
		}
		ok, _, err = store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.Used)
	})

	t.Run("zero limit denies", func(t *testing.T) {
		store, _ := newStore(t)
		ok, _, err := store.Consume(ctx, "u1", "backup.month", 1, 0, day)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unbounded limit", func(t *testing.T) {
		store, _ := newStore(t)
		for range 20 {
			ok, _, err := store.Consume(ctx, "u1", "export.month", 10, -1, day)
			require.NoError(t, err)
			require.True(t, ok)
		}
		u, err := store.Usage(ctx, "u1", "export.month")
		require.NoError(t, err)
		assert.Equal(t, int64(200), u.Used)
	})

	t.Run("window expiry restarts counter", func(t *testing.T) {
		store, advance := newStore(t)
		ok, _, err := store.Consume(ctx, "u1", "analysis.day", 5, 5, day)
		require.NoError(t, err)
		require.True(t, ok)

		ok, _, err = store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
		require.NoError(t, err)
		require.False(t, ok)

		advance(day + time.Second)

		u, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, int64(0), u.Used)

		ok, u, err = store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(1), u.Used)
	})

	t.Run("reset", func(t *testing.T) {
		store, _ := newStore(t)
		_, _, err := store.Consume(ctx, "u1", "analysis.day", 1, 5, day)
		require.NoError(t, err)

		existed, err := store.Reset(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.True(t, existed)

		existed, err = store.Reset(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.False(t, existed)
	})

	t.Run("reset user keeps other users", func(t *testing.T) {
		store, _ := newStore(t)
		for _, key := range []string{"analysis.day", "export.month"} {
			_, _, err := store.Consume(ctx, "u1", key, 1, 5, day)
			require.NoError(t, err)
			_, _, err = store.Consume(ctx, "u2", key, 1, 5, day)
			require.NoError(t, err)
		}

		require.NoError(t, store.ResetUser(ctx, "u1"))

		for _, key := range []string{"analysis.day", "export.month"} {
			u, err := store.Usage(ctx, "u1", key)
			require.NoError(t, err)
			assert.Equal(t, int64(0), u.Used)

			u, err = store.Usage(ctx, "u2", key)
			require.NoError(t, err)
			assert.Equal(t, int64(1), u.Used)
		}
	})

	t.Run("concurrent consumers never exceed limit", func(t *testing.T) {
		store, _ := newStore(t)
		const limit = 10

		var wg sync.WaitGroup
		var allowed atomic.Int64
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, _, err := store.Consume(ctx, "u1", "analysis.day", 1, limit, day)
				if err == nil && ok {
					allowed.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(limit), allowed.Load())
		u, err := store.Usage(ctx, "u1", "analysis.day")
		require.NoError(t, err)
		assert.Equal(t, int64(limit), u.Used)
	})
}
