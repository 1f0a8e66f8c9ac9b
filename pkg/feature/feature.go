package feature

import (
	"context"
	"errors"
	"strings"
	"time"
)

// EmergencyPrefix marks kill-switch keys whose stored true means "forced off".
const EmergencyPrefix = "emergency."

// Flag is a stored toggle.
type Flag struct {
	Key         string    `json:"key"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Info is a read-only snapshot of a toggle.
type Info struct {
	Key         string    `json:"key"`
	Enabled     bool      `json:"enabled"`   // stored value
	Emergency   bool      `json:"emergency"` // key uses EmergencyPrefix
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// Info converts the flag into a snapshot.
func (f Flag) Info() Info {
	return Info{
		Key:         f.Key,
		Enabled:     f.Enabled,
		Emergency:   IsEmergencyKey(f.Key),
		Description: f.Description,
		UpdatedAt:   f.UpdatedAt,
	}
}

// IsEmergencyKey reports whether key is a kill switch.
func IsEmergencyKey(key string) bool {
	return strings.HasPrefix(key, EmergencyPrefix)
}

// Provider is the interface that all toggle stores implement.
type Provider interface {
	// IsOn returns the stored value. Unknown keys are off without an error.
	IsOn(ctx context.Context, key string) (bool, error)

	// GetFlag returns the stored flag or ErrFlagNotFound.
	GetFlag(ctx context.Context, key string) (*Flag, error)

	// All returns every stored key with its value.
	All(ctx context.Context) (map[string]bool, error)

	// Set creates or updates a toggle.
	Set(ctx context.Context, key string, on bool) error

	// Delete removes a toggle or returns ErrFlagNotFound.
	Delete(ctx context.Context, key string) error

	// Close releases any resources used by the provider.
	Close() error
}

// Lookup returns the snapshot for key. Unknown keys produce a disabled snapshot
// and found=false.
func Lookup(ctx context.Context, p Provider, key string) (info Info, found bool, err error) {
	flag, err := p.GetFlag(ctx, key)
	switch {
	case err == nil:
		return flag.Info(), true, nil
	case errors.Is(err, ErrFlagNotFound):
		return Flag{Key: key}.Info(), false, nil
	default:
		return Info{}, false, err
	}
}
