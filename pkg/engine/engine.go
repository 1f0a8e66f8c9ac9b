package engine

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entitlements/pkg/access"
	"github.com/dmitrymomot/entitlements/pkg/capacity"
	"github.com/dmitrymomot/entitlements/pkg/feature"
	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/paywall"
	"github.com/dmitrymomot/entitlements/pkg/pg"
	"github.com/dmitrymomot/entitlements/pkg/plans"
	"github.com/dmitrymomot/entitlements/pkg/quota"
	"github.com/dmitrymomot/entitlements/pkg/redis"
)

// DefaultToggles returns the toggles the capacity checks read, as a fresh
// feature backend starts with them.
func DefaultToggles() map[string]bool {
	return map[string]bool{
		capacity.FlagBackup:      true,
		capacity.FlagAnalysisOff: false,
		capacity.FlagExportOff:   false,
	}
}

// Engine holds the wired entitlement services.
type Engine struct {
	// ID identifies this instance in logs.
	ID string

	Registry    *plans.Registry
	Assignments *plans.Assignments
	Quotas      *quota.Policy
	Features    feature.Provider
	Access      *access.Guard
	Capacity    *capacity.Guard
	Paywall     *paywall.Trigger

	logger  *slog.Logger
	checks  map[string]func(context.Context) error
	closers []func() error
}

// Option configures New.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	registerer prometheus.Registerer
	source     plans.Source
	resolver   plans.PlanIDResolver
	redis      goredis.UniversalClient
	store      quota.Store
	features   feature.Provider
	toggles    map[string]bool
}

// WithLogger replaces the logger built from LogLevel and LogFormat.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRegisterer registers the decision metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithPlanSource replaces the catalog source chosen from CatalogFile.
func WithPlanSource(src plans.Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithPlanResolver resolves user plans through fn instead of Engine.Assignments.
func WithPlanResolver(fn plans.PlanIDResolver) Option {
	return func(o *options) {
		if fn != nil {
			o.resolver = fn
		}
	}
}

// WithRedisClient uses client instead of connecting with Config.Redis.
// The engine does not close a client it did not open.
func WithRedisClient(client goredis.UniversalClient) Option {
	return func(o *options) {
		if client != nil {
			o.redis = client
		}
	}
}

// WithQuotaStore bypasses QuotaBackend.
func WithQuotaStore(s quota.Store) Option {
	return func(o *options) {
		if s != nil {
			o.store = s
		}
	}
}

// WithFeatureProvider bypasses FeatureBackend.
func WithFeatureProvider(p feature.Provider) Option {
	return func(o *options) {
		if p != nil {
			o.features = p
		}
	}
}

// WithToggles merges values over DefaultToggles when seeding the feature backend.
func WithToggles(values map[string]bool) Option {
	return func(o *options) { maps.Copy(o.toggles, values) }
}

// New validates cfg and builds every service. Connections opened here are
// released by Close, or immediately if New fails.
func New(ctx context.Context, cfg Config, opts ...Option) (_ *Engine, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{toggles: DefaultToggles()}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		lopts := []logger.Option{
			logger.WithLevelName(cfg.LogLevel),
			logger.WithContextExtractors(logger.RequestIDExtractor),
		}
		if cfg.LogFormat != "" {
			lopts = append(lopts, logger.WithFormat(logger.Format(cfg.LogFormat)))
		}
		o.logger = logger.New(lopts...)
	}

	e := &Engine{
		ID:     uuid.NewString(),
		checks: make(map[string]func(context.Context) error),
	}
	e.logger = o.logger.With(logger.Component("engine"), slog.String("instance_id", e.ID))
	defer func() {
		if err != nil {
			_ = e.Close()
		}
	}()

	src := o.source
	if src == nil {
		src = plans.DefaultSource()
		if cfg.CatalogFile != "" {
			src = plans.NewYAMLSource(cfg.CatalogFile)
		}
	}
	e.Registry, err = plans.NewRegistry(ctx, src,
		plans.WithLogger(o.logger),
		plans.WithDefaultPlan(cfg.DefaultPlan),
	)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	e.Assignments = plans.NewAssignments()
	resolve := o.resolver
	if resolve == nil {
		resolve = e.Assignments.Resolver()
	}

	client := o.redis
	if client == nil && o.needsRedis(cfg) {
		c, err := redis.Connect(ctx, cfg.Redis, redis.WithLogger(o.logger))
		if err != nil {
			return nil, errors.Join(ErrFailedToOpenBackend, err)
		}
		e.closers = append(e.closers, c.Close)
		client = c
	}
	if client != nil {
		e.checks["redis"] = redis.Healthcheck(client)
	}

	store, err := e.quotaStore(ctx, cfg, o, client)
	if err != nil {
		return nil, err
	}
	e.Quotas = quota.NewPolicy(e.Registry, resolve, store)

	e.Features, err = e.featureProvider(ctx, cfg, o, client)
	if err != nil {
		return nil, err
	}

	e.Access = access.NewGuard(e.Registry, resolve, e.Quotas, e.Features,
		access.WithLogger(o.logger),
		access.WithMetrics(access.NewMetrics(o.registerer, cfg.MetricsNamespace)),
	)
	e.Capacity = capacity.NewGuard(e.Access, capacity.WithLogger(o.logger))
	e.Paywall = paywall.NewTrigger(e.Access,
		paywall.WithFailOpen(cfg.PaywallFailOpen),
		paywall.WithLogger(o.logger),
	)

	e.logger.InfoContext(ctx, "entitlement engine ready",
		slog.String("catalog_version", e.Registry.Version()),
		slog.String("default_plan", e.Registry.DefaultPlanID()),
		slog.String("quota_backend", backendName(cfg.QuotaBackend, o.store != nil)),
		slog.String("feature_backend", backendName(cfg.FeatureBackend, o.features != nil)),
		slog.Bool("paywall_fail_open", cfg.PaywallFailOpen),
	)
	return e, nil
}

func (e *Engine) quotaStore(ctx context.Context, cfg Config, o *options, client goredis.UniversalClient) (quota.Store, error) {
	if o.store != nil {
		return o.store, nil
	}
	switch cfg.QuotaBackend {
	case BackendRedis:
		return quota.NewRedisStore(client, quota.WithRedisPrefix(cfg.Redis.KeyPrefix+":quota")), nil
	case BackendPostgres:
		pool, err := pg.Connect(ctx, cfg.Postgres, o.logger)
		if err != nil {
			return nil, errors.Join(ErrFailedToOpenBackend, err)
		}
		e.closers = append(e.closers, func() error { pool.Close(); return nil })
		e.checks["postgres"] = pg.Healthcheck(pool)

		if cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx, pool, quota.Migrations, quota.MigrationsDir, cfg.Postgres, o.logger); err != nil {
				return nil, errors.Join(ErrFailedToOpenBackend, err)
			}
		}
		return quota.NewPostgresStore(pool), nil
	default:
		return quota.NewMemoryStore(), nil
	}
}

func (e *Engine) featureProvider(ctx context.Context, cfg Config, o *options, client goredis.UniversalClient) (feature.Provider, error) {
	if o.features != nil {
		return o.features, nil
	}
	if cfg.FeatureBackend != BackendRedis {
		return feature.NewMemoryProviderFromMap(o.toggles), nil
	}

	p := feature.NewRedisProvider(client, feature.WithKeyPrefix(cfg.Redis.KeyPrefix+":features"))
	// Seed only missing keys so operator changes survive restarts.
	for key, on := range o.toggles {
		_, err := p.GetFlag(ctx, key)
		if err == nil {
			continue
		}
		if !errors.Is(err, feature.ErrFlagNotFound) {
			return nil, errors.Join(ErrFailedToOpenBackend, err)
		}
		if err := p.Set(ctx, key, on); err != nil {
			return nil, errors.Join(ErrFailedToOpenBackend, err)
		}
	}
	return p, nil
}

// Healthcheck pings every backend the engine talks to.
func (e *Engine) Healthcheck(ctx context.Context) error {
	var errs []error
	for name, check := range e.checks {
		if err := check(ctx); err != nil {
			e.logger.ErrorContext(ctx, "backend healthcheck failed",
				slog.String("backend", name),
				logger.Error(err),
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrHealthcheckFailed}, errs...)...)
	}
	return nil
}

// Close releases the connections opened by New in reverse order.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func (o *options) needsRedis(cfg Config) bool {
	return (cfg.QuotaBackend == BackendRedis && o.store == nil) ||
		(cfg.FeatureBackend == BackendRedis && o.features == nil)
}

func backendName(name string, injected bool) string {
	if injected {
		return "custom"
	}
	return name
}
