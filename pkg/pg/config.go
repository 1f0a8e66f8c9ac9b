package pg

import "time"

// Config describes the Postgres pool used by the quota store.
type Config struct {
	ConnectionString  string        `env:"DSN"`
	MaxConns          int32         `env:"MAX_CONNS" envDefault:"10"`
	MinConns          int32         `env:"MIN_CONNS" envDefault:"2"`
	HealthCheckPeriod time.Duration `env:"HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"RETRY_INTERVAL" envDefault:"5s"` // attempt n waits n*RetryInterval

	// Migrate applies the bundled schema migrations after connecting.
	Migrate         bool   `env:"MIGRATE" envDefault:"true"`
	MigrationsTable string `env:"MIGRATIONS_TABLE" envDefault:"entitlements_schema_migrations"`
}
