package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

// Option configures a single Load call.
type Option func(*options)

type options struct {
	files       []string
	environment map[string]string
	prefix      string
}

// WithEnvFiles loads the given .env files before parsing. Variables already
// set in the process environment win over file values.
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.files = append(o.files, paths...)
	}
}

// WithEnvironment parses from env instead of the process environment.
// No .env file is read.
func WithEnvironment(env map[string]string) Option {
	return func(o *options) {
		o.environment = env
	}
}

// WithPrefix prepends prefix to every env tag.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// Load parses environment variables into the struct v points to, based on
// its `env` and `envDefault` field tags.
//
// Unless WithEnvFiles or WithEnvironment is given, the default .env file is
// loaded once per process if it exists.
//
// Example:
//
//	type RedisConfig struct {
//		URL          string `env:"REDIS_URL,required"`
//		RetryAttempts int   `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//	}
//
//	var cfg RedisConfig
//	if err := config.Load(&cfg); err != nil {
//		// Handle error
//	}
func Load[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	switch {
	case o.environment != nil:
	case len(o.files) > 0:
		if err := godotenv.Load(o.files...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	default:
		defaultEnvLoaded.Do(func() {
			// Ignore errors - the .env file might not exist and that's ok
			_ = godotenv.Load()
		})
	}

	if err := env.ParseWithOptions(v, env.Options{
		Environment: o.environment,
		Prefix:      o.prefix,
	}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// This is useful for configurations that are required for the application to start.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}
