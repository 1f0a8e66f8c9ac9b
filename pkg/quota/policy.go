package quota

import (
	"context"
	"time"

	"github.com/dmitrymomot/entitlements/pkg/plans"
)

// Policy checks and consumes quota against the user's current plan.
type Policy struct {
	plans   plans.Reader
	resolve plans.PlanIDResolver
	store   Store
	now     func() time.Time
}

// PolicyOption configures a Policy.
type PolicyOption func(*Policy)

// WithPolicyClock replaces time.Now for reset-time computation.
func WithPolicyClock(now func() time.Time) PolicyOption {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPolicy creates a Policy. A nil store falls back to a fresh MemoryStore.
func NewPolicy(reg plans.Reader, resolve plans.PlanIDResolver, store Store, opts ...PolicyOption) *Policy {
	p := &Policy{
		plans:   reg,
		resolve: resolve,
		store:   store,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.store == nil {
		p.store = NewMemoryStore(WithClock(p.now))
	}
	return p
}

// Limit returns the plan limit for key and whether the plan defines it.
func (p *Policy) Limit(ctx context.Context, userID, key string) (int64, bool, error) {
	plan, err := plans.Resolve(ctx, p.plans, p.resolve, userID)
	if err != nil {
		return 0, false, err
	}
	limit, ok := plan.QuotaLimit(key)
	return limit, ok, nil
}

// Remaining returns the units left for key: 0 when the plan lacks the key,
// Unbounded for unlimited quotas.
func (p *Policy) Remaining(ctx context.Context, userID, key string) (int64, error) {
	info, err := p.Snapshot(ctx, userID, key)
	if err != nil {
		return 0, err
	}
	return info.Remaining(), nil
}

// CheckAndConsume consumes amount units if they are available.
// It returns false without touching the counter otherwise.
func (p *Policy) CheckAndConsume(ctx context.Context, userID, key string, amount int64) (bool, error) {
	ok, _, err := p.Consume(ctx, userID, key, amount)
	return ok, err
}

// Consume is CheckAndConsume that also returns the snapshot after the call.
func (p *Policy) Consume(ctx context.Context, userID, key string, amount int64) (bool, Info, error) {
	if amount <= 0 {
		return false, Info{}, ErrInvalidAmount
	}

	limit, defined, err := p.Limit(ctx, userID, key)
	if err != nil {
		return false, Info{}, err
	}
	if !defined {
		info, err := p.snapshot(ctx, userID, key, 0)
		return false, info, err
	}

	ok, usage, err := p.store.Consume(ctx, userID, key, amount, limit, PeriodForKey(key))
	if err != nil {
		return false, Info{}, err
	}
	return ok, p.info(key, limit, usage), nil
}

// Info returns a snapshot, or nil when the plan does not define key.
func (p *Policy) Info(ctx context.Context, userID, key string) (*Info, error) {
	limit, defined, err := p.Limit(ctx, userID, key)
	if err != nil || !defined {
		return nil, err
	}
	info, err := p.snapshot(ctx, userID, key, limit)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Snapshot returns a snapshot for key, with a zero limit when the plan lacks it.
func (p *Policy) Snapshot(ctx context.Context, userID, key string) (Info, error) {
	limit, _, err := p.Limit(ctx, userID, key)
	if err != nil {
		return Info{}, err
	}
	return p.snapshot(ctx, userID, key, limit)
}

// ResetQuota clears the counter and reports whether one existed.
func (p *Policy) ResetQuota(ctx context.Context, userID, key string) (bool, error) {
	return p.store.Reset(ctx, userID, key)
}

// ResetUser clears every counter of userID, e.g. on logout.
func (p *Policy) ResetUser(ctx context.Context, userID string) error {
	return p.store.ResetUser(ctx, userID)
}

func (p *Policy) snapshot(ctx context.Context, userID, key string, limit int64) (Info, error) {
	usage, err := p.store.Usage(ctx, userID, key)
	if err != nil {
		return Info{}, err
	}
	return p.info(key, limit, usage), nil
}

func (p *Policy) info(key string, limit int64, usage Usage) Info {
	resetAt := usage.ResetAt
	if resetAt.IsZero() {
		resetAt = NextReset(key, p.now())
	}
	return Info{
		Key:       key,
		Current:   usage.Used,
		Limit:     limit,
		ResetTime: resetAt,
		ResetType: ResetTypeForKey(key),
	}
}
