package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/quota"
)

// Guard orchestrates feature, scope and quota checks.
type Guard struct {
	plans    plans.Reader
	resolve  plans.PlanIDResolver
	scopes   *ScopePolicy
	quotas   *quota.Policy
	features feature.Provider
	logger   *slog.Logger
	metrics  *Metrics
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithLogger sets the logger. Denials are logged at debug level.
func WithLogger(l *slog.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics enables decision counters.
func WithMetrics(m *Metrics) GuardOption {
	return func(g *Guard) {
		g.metrics = m
	}
}

// NewGuard creates a Guard. A nil quota policy gets an in-memory one, a nil
// feature provider an empty in-memory provider.
func NewGuard(reg plans.Reader, resolve plans.PlanIDResolver, quotas *quota.Policy, features feature.Provider, opts ...GuardOption) *Guard {
	if quotas == nil {
		quotas = quota.NewPolicy(reg, resolve, nil)
	}
	if features == nil {
		features = feature.NewMemoryProviderFromMap(nil)
	}

	g := &Guard{
		plans:    reg,
		resolve:  resolve,
		scopes:   NewScopePolicy(reg, resolve),
		quotas:   quotas,
		features: features,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("access"))
	return g
}

// CheckOption adds an optional gate to a decision.
type CheckOption func(*checkOptions)

type checkOptions struct {
	quotaKey string
	flagKey  string
	amount   int64
}

// WithQuota gates the action on quota key.
func WithQuota(key string) CheckOption {
	return func(o *checkOptions) {
		o.quotaKey = key
	}
}

// WithAmount sets the quota units the action costs. Defaults to 1.
func WithAmount(n int64) CheckOption {
	return func(o *checkOptions) {
		o.amount = n
	}
}

// WithFlag gates the action on a feature toggle.
func WithFlag(key string) CheckOption {
	return func(o *checkOptions) {
		o.flagKey = key
	}
}

// AllowAction decides and, when allowed, consumes quota.
func (g *Guard) AllowAction(ctx context.Context, userID, action string, opts ...CheckOption) (Result, error) {
	return g.decide(ctx, ModeAllow, userID, action, opts)
}

// CanPerformAction runs the same checks as AllowAction without consuming quota.
func (g *Guard) CanPerformAction(ctx context.Context, userID, action string, opts ...CheckOption) (Result, error) {
	return g.decide(ctx, ModeCheck, userID, action, opts)
}

func (g *Guard) decide(ctx context.Context, mode, userID, action string, opts []CheckOption) (Result, error) {
	o := checkOptions{amount: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.quotaKey != "" && o.amount <= 0 {
		return Result{}, quota.ErrInvalidAmount
	}

	res, err := g.evaluate(ctx, mode, userID, action, o)
	if err != nil {
		g.logger.ErrorContext(ctx, "access decision failed",
			logger.UserID(userID),
			logger.Action(action),
			logger.QuotaKey(o.quotaKey),
			logger.FlagKey(o.flagKey),
			logger.Error(err),
		)
		return Result{}, err
	}

	g.metrics.observe(mode, res)
	if !res.Allowed {
		g.logger.DebugContext(ctx, "access denied",
			logger.UserID(userID),
			logger.Action(action),
			logger.Reason(res.Reason.String()),
			logger.QuotaKey(o.quotaKey),
			logger.FlagKey(o.flagKey),
			slog.String("mode", mode),
		)
	}
	return res, nil
}

func (g *Guard) evaluate(ctx context.Context, mode, userID, action string, o checkOptions) (Result, error) {
	if o.flagKey != "" {
		info, _, err := feature.Lookup(ctx, g.features, o.flagKey)
		if err != nil {
			return Result{}, errors.Join(ErrFeatureCheckFailed, err)
		}
		if !EffectiveEnabled(info.Key, info.Enabled) {
			return featureOff(info), nil
		}
	}

	granted, err := g.scopes.HasScope(ctx, userID, action)
	if err != nil {
		return Result{}, err
	}
	if !granted {
		return g.missingScope(action), nil
	}

	if o.quotaKey == "" {
		return allowed(), nil
	}

	if mode == ModeCheck {
		info, err := g.quotas.Snapshot(ctx, userID, o.quotaKey)
		if err != nil {
			return Result{}, errors.Join(ErrQuotaCheckFailed, err)
		}
		if info.Remaining() < o.amount {
			return quotaExceeded(info), nil
		}
		return allowed(), nil
	}

	ok, info, err := g.quotas.Consume(ctx, userID, o.quotaKey, o.amount)
	if err != nil {
		return Result{}, errors.Join(ErrQuotaCheckFailed, err)
	}
	if !ok {
		return quotaExceeded(info), nil
	}
	g.metrics.consume(o.quotaKey, o.amount)
	return allowed(), nil
}

func (g *Guard) missingScope(action string) Result {
	planID, ok := g.scopes.RequiredPlanForAction(action)
	if !ok {
		return missingScope(action, "", "")
	}
	plan, _ := g.plans.Plan(planID)
	return missingScope(action, planID, plan.Name)
}

// EffectiveEnabled returns whether the feature guarded by key is on, given the
// stored toggle value. Emergency keys are inverted.
func EffectiveEnabled(key string, stored bool) bool {
	if feature.IsEmergencyKey(key) {
		return !stored
	}
	return stored
}
