package quota

import (
	"context"
	"math"
	"sync"
	"time"
)

type counter struct {
	used    int64
	resetAt time.Time
}

type counterKey struct {
	userID string
	key    string
}

// MemoryStore implements Store with a single mutex around the counter map.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[counterKey]*counter
	now      func() time.Time
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryStoreOption {
	return func(ms *MemoryStore) {
		if now != nil {
			ms.now = now
		}
	}
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		counters: make(map[counterKey]*counter),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ms)
	}
	return ms
}

// Usage returns the active counter for (userID, key).
func (ms *MemoryStore) Usage(ctx context.Context, userID, key string) (Usage, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	c := ms.active(counterKey{userID, key})
	if c == nil {
		return Usage{}, nil
	}
	return Usage{Used: c.used, ResetAt: c.resetAt}, nil
}

// Consume checks and increments under the store lock.
func (ms *MemoryStore) Consume(ctx context.Context, userID, key string, amount, limit int64, period time.Duration) (bool, Usage, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ck := counterKey{userID, key}
	c := ms.active(ck)

	var used int64
	if c != nil {
		used = c.used
	}

	if !fits(used, amount, limit) {
		if c == nil {
			return false, Usage{}, nil
		}
		return false, Usage{Used: c.used, ResetAt: c.resetAt}, nil
	}

	if c == nil {
		c = &counter{resetAt: ms.now().Add(period)}
		ms.counters[ck] = c
	}
	c.used += amount

	return true, Usage{Used: c.used, ResetAt: c.resetAt}, nil
}

// Reset removes the counter.
func (ms *MemoryStore) Reset(ctx context.Context, userID, key string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ck := counterKey{userID, key}
	existed := ms.active(ck) != nil
	delete(ms.counters, ck)
	return existed, nil
}

// ResetUser removes every counter of userID.
func (ms *MemoryStore) ResetUser(ctx context.Context, userID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for ck := range ms.counters {
		if ck.userID == userID {
			delete(ms.counters, ck)
		}
	}
	return nil
}

// active returns the counter if its window is still open, dropping it otherwise.
// Caller must hold ms.mu.
func (ms *MemoryStore) active(ck counterKey) *counter {
	c, ok := ms.counters[ck]
	if !ok {
		return nil
	}
	if !ms.now().Before(c.resetAt) {
		delete(ms.counters, ck)
		return nil
	}
	return c
}

// fits reports whether amount more units stay within limit. It never adds, so
// huge amounts cannot wrap around; an unbounded counter stops at MaxInt64.
func fits(used, amount, limit int64) bool {
	if limit < 0 {
		return used <= math.MaxInt64-amount
	}
	return amount <= limit-used
}
