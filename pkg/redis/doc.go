// Package redis connects to the Redis server backing the shared quota
// counters and feature toggles.
//
// It wraps the go-redis client and adds:
//
//   - `Connect`, which retries the connection using the supplied Config.
//   - `Healthcheck`, for liveness or readiness probes.
//
// Config fields can be populated from environment variables via
// pkg/config; the engine reads them with the ENTITLEMENT_REDIS_ prefix.
//
//	cfg := redis.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	}
//
//	client, err := redis.Connect(ctx, cfg, redis.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := quota.NewRedisStore(client, quota.WithRedisPrefix(cfg.KeyPrefix+":quota"))
//
// Sentinel errors wrap the underlying go-redis errors using errors.Join.
package redis
