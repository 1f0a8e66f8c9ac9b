package feature

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"
)

// MemoryProvider is an in-memory implementation of the Provider interface.
type MemoryProvider struct {
	flags map[string]Flag
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryProvider creates a provider seeded with initialFlags. Nil entries are skipped.
func NewMemoryProvider(initialFlags ...*Flag) (*MemoryProvider, error) {
	provider := &MemoryProvider{
		flags: make(map[string]Flag, len(initialFlags)),
		now:   time.Now,
	}

	for _, flag := range initialFlags {
		if flag == nil {
			continue
		}
		if flag.Key == "" {
			return nil, errors.Join(ErrInvalidFlag, errors.New("flag key cannot be empty"))
		}
		stored := *flag
		if stored.UpdatedAt.IsZero() {
			stored.UpdatedAt = provider.now()
		}
		provider.flags[stored.Key] = stored
	}

	return provider, nil
}

// NewMemoryProviderFromMap seeds a provider from plain key to value pairs,
// the shape remote-config payloads usually arrive in.
func NewMemoryProviderFromMap(values map[string]bool) *MemoryProvider {
	provider := &MemoryProvider{
		flags: make(map[string]Flag, len(values)),
		now:   time.Now,
	}
	now := provider.now()
	for key, on := range values {
		if key == "" {
			continue
		}
		provider.flags[key] = Flag{Key: key, Enabled: on, UpdatedAt: now}
	}
	return provider
}

// IsOn returns the stored value for key.
func (m *MemoryProvider) IsOn(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[key].Enabled, nil
}

// GetFlag retrieves a copy of the flag.
func (m *MemoryProvider) GetFlag(ctx context.Context, key string) (*Flag, error) {
	m.mu.RLock()
	flag, exists := m.flags[key]
	m.mu.RUnlock()

	if !exists {
		return nil, ErrFlagNotFound
	}
	return &flag, nil
}

// All returns a copy of every stored value.
func (m *MemoryProvider) All(ctx context.Context) (map[string]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]bool, len(m.flags))
	for key, flag := range m.flags {
		result[key] = flag.Enabled
	}
	return result, nil
}

// Set creates or updates a toggle, preserving its description.
func (m *MemoryProvider) Set(ctx context.Context, key string, on bool) error {
	if key == "" {
		return errors.Join(ErrInvalidFlag, errors.New("flag key cannot be empty"))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	flag := m.flags[key]
	flag.Key = key
	flag.Enabled = on
	flag.UpdatedAt = m.now()
	m.flags[key] = flag
	return nil
}

// Replace swaps the whole toggle set atomically, e.g. after a remote-config refresh.
func (m *MemoryProvider) Replace(values map[string]bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]Flag, len(values))
	for key, on := range values {
		if key == "" {
			continue
		}
		flag := m.flags[key]
		flag.Key = key
		flag.Enabled = on
		flag.UpdatedAt = now
		next[key] = flag
	}
	m.flags = next
}

// Delete removes a flag.
func (m *MemoryProvider) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.flags[key]; !exists {
		return ErrFlagNotFound
	}
	delete(m.flags, key)
	return nil
}

// Snapshot returns a copy of every stored flag.
func (m *MemoryProvider) Snapshot() map[string]Flag {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.flags)
}

// Close is a no-op for the memory provider.
func (m *MemoryProvider) Close() error {
	return nil
}
