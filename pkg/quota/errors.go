package quota

import "errors"

var (
	// ErrInvalidAmount is returned when the requested amount is not positive.
	ErrInvalidAmount = errors.New("quota: amount must be positive")

	// ErrStoreUnavailable wraps failures of the backing store.
	ErrStoreUnavailable = errors.New("quota: store unavailable")
)
