// Package config loads application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11`:
//
//   - Loads values from one or more `.env` files (by default the `.env` in the
//     current working directory, read once per process and optional).
//   - Parses the environment into any Go struct using field tags.
//   - Exposes MustLoad for configuration the process cannot start without.
//
// # Usage
//
//	type Config struct {
//	    DefaultPlan string        `env:"ENTITLEMENT_DEFAULT_PLAN"`
//	    QuotaStore  string        `env:"ENTITLEMENT_QUOTA_STORE" envDefault:"memory"`
//	    RedisURL    string        `env:"ENTITLEMENT_REDIS_URL"`
//	    Timeout     time.Duration `env:"ENTITLEMENT_TIMEOUT" envDefault:"5s"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Parsed values are not cached: every Load reads the environment again, so
// components constructed from separate Load calls never share state.
//
// # Error Handling
//
//   - `ErrParsingConfig`  – failed to parse env vars into struct.
//   - `ErrLoadingEnvFile` – an explicitly requested .env file could not be read.
//   - `ErrNilPointer`     – nil pointer passed to `Load`/`MustLoad`.
//
// # Testing
//
// WithEnvironment replaces the process environment with a fixed map, which
// keeps tests parallel-safe.
package config
