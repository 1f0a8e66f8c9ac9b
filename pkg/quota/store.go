package quota

import (
	"context"
	"time"
)

// Store persists usage counters.
type Store interface {
	// Usage returns the counter for (userID, key). Expired or missing windows
	// report zero usage and a zero ResetAt.
	Usage(ctx context.Context, userID, key string) (Usage, error)

	// Consume adds amount to the counter if the result stays within limit
	// (limit < 0 means no ceiling). The check and the increment must be atomic.
	// A new window of length period is opened when none is active.
	// On denial the counter is left as it was and its current state is returned.
	Consume(ctx context.Context, userID, key string, amount, limit int64, period time.Duration) (bool, Usage, error)

	// Reset drops the counter and reports whether one existed.
	Reset(ctx context.Context, userID, key string) (bool, error)

	// ResetUser drops every counter of userID.
	ResetUser(ctx context.Context, userID string) error
}
