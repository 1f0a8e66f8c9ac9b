package engine

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/entitlements/pkg/config"
	"github.com/dmitrymomot/entitlements/pkg/logger"
	"github.com/dmitrymomot/entitlements/pkg/pg"
	"github.com/dmitrymomot/entitlements/pkg/redis"
)

// EnvPrefix is prepended to every variable Config reads.
const EnvPrefix = "ENTITLEMENT_"

// Backend names accepted by QuotaBackend and FeatureBackend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the engine configuration.
type Config struct {
	// DefaultPlan overrides the catalog's default plan id.
	DefaultPlan string `env:"DEFAULT_PLAN"`
	// CatalogFile points at a YAML catalog. Empty means the built-in catalog.
	CatalogFile string `env:"CATALOG_FILE"`

	QuotaBackend   string `env:"QUOTA_BACKEND" envDefault:"memory"`
	FeatureBackend string `env:"FEATURE_BACKEND" envDefault:"memory"`

	// PaywallFailOpen lets requests through when an entitlement check fails.
	PaywallFailOpen bool `env:"PAYWALL_FAIL_OPEN" envDefault:"true"`

	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"json"`
	MetricsNamespace string `env:"METRICS_NAMESPACE" envDefault:"entitlement"`

	Redis    redis.Config `envPrefix:"REDIS_"`
	Postgres pg.Config    `envPrefix:"POSTGRES_"`
}

// LoadConfig fills cfg from ENTITLEMENT_* variables and any env files.
func LoadConfig(cfg *Config, opts ...config.Option) error {
	opts = append([]config.Option{config.WithPrefix(EnvPrefix)}, opts...)
	return config.Load(cfg, opts...)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch c.QuotaBackend {
	case BackendMemory, BackendRedis, BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown quota backend %q", c.QuotaBackend))
	}
	switch c.FeatureBackend {
	case BackendMemory, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown feature backend %q", c.FeatureBackend))
	}
	switch logger.Format(c.LogFormat) {
	case "", logger.FormatJSON, logger.FormatText:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
