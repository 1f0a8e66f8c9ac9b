package redis

import "time"

// Config describes the Redis connection shared by the quota store and the
// feature provider.
type Config struct {
	// ConnectionURL is in the form redis://:password@localhost:6379/0.
	ConnectionURL string `env:"URL"`
	// KeyPrefix namespaces every key the engine writes.
	KeyPrefix      string        `env:"KEY_PREFIX" envDefault:"entitlements"`
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"30s"`
}
