package quota

import "embed"

// Migrations holds the goose migrations for the quota_usage table used by
// PostgresStore.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"
