package redis

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entitlements/pkg/logger"
)

// ConnectOption configures Connect.
type ConnectOption func(*connectOptions)

type connectOptions struct {
	logger *slog.Logger
}

// WithLogger logs failed attempts at warn level.
func WithLogger(l *slog.Logger) ConnectOption {
	return func(o *connectOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Connect establishes a connection to a Redis server using the provided configuration.
// It attempts to connect up to RetryAttempts times, waiting RetryInterval between
// attempts, and gives up when ConnectTimeout elapses.
//
// Returns ErrEmptyConnectionURL or ErrFailedToParseRedisConnString for a bad URL
// and ErrRedisNotReady if all connection attempts fail.
func Connect(ctx context.Context, cfg Config, opts ...ConnectOption) (*redis.Client, error) {
	o := connectOptions{logger: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(cfg.ConnectionURL) == "" {
		return nil, ErrEmptyConnectionURL
	}

	redisConnOpt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := max(cfg.RetryAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		redisClient := redis.NewClient(redisConnOpt)

		lastErr = redisClient.Ping(ctx).Err()
		if lastErr == nil {
			return redisClient, nil
		}
		_ = redisClient.Close()

		o.logger.WarnContext(ctx, "redis not ready",
			logger.Component("redis"),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			logger.Error(lastErr),
		)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, errors.Join(ErrRedisNotReady, lastErr)
}
