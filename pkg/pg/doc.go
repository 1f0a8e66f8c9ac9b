// Package pg connects to the Postgres database backing the durable quota
// store.
//
// It wraps pgx/v5 pooling and goose/v3 migrations:
//
//   - Connect opens a pool and pings it, retrying with linear backoff.
//   - Migrate applies goose migrations from any fs.FS, typically the one
//     embedded by the quota package.
//   - Healthcheck returns a probe for readiness endpoints.
//
//	pool, err := pg.Connect(ctx, cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, quota.Migrations, quota.MigrationsDir, cfg, log); err != nil {
//	    return err
//	}
//
//	store := quota.NewPostgresStore(pool)
//
// Config fields are read by the engine with the ENTITLEMENT_POSTGRES_ prefix.
package pg
