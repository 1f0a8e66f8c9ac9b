package quota

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs check and increment in one Redis call.
// KEYS[1] counter; ARGV[1] amount; ARGV[2] limit (-1 unbounded); ARGV[3] window in ms.
// Returns {allowed, used, pttl}. An INCRBY overflow on an unbounded counter is a denial.
var consumeScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if limit >= 0 and amount > limit - used then
  return {0, used, redis.call('PTTL', KEYS[1])}
end
local n = redis.pcall('INCRBY', KEYS[1], ARGV[1])
if type(n) == 'table' and n.err then
  return {0, used, redis.call('PTTL', KEYS[1])}
end
if redis.call('PTTL', KEYS[1]) < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return {1, n, redis.call('PTTL', KEYS[1])}
`)

// RedisStore implements Store on Redis. Each counter is a string key whose TTL
// is the remaining window, so expired windows vanish on their own.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Defaults to "entitlements:quota".
func WithRedisPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// NewRedisStore wraps client. The client stays owned by the caller.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	rs := &RedisStore{
		client: client,
		prefix: "entitlements:quota",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) counterKey(userID, key string) string {
	return rs.prefix + ":" + userID + ":" + key
}

// Usage reads the counter and its TTL in one round trip.
func (rs *RedisStore) Usage(ctx context.Context, userID, key string) (Usage, error) {
	k := rs.counterKey(userID, key)

	var getCmd *redis.StringCmd
	var ttlCmd *redis.DurationCmd
	_, err := rs.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		getCmd = pipe.Get(ctx, k)
		ttlCmd = pipe.PTTL(ctx, k)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return Usage{}, errors.Join(ErrStoreUnavailable, err)
	}

	used, err := getCmd.Int64()
	if errors.Is(err, redis.Nil) {
		return Usage{}, nil
	}
	if err != nil {
		return Usage{}, errors.Join(ErrStoreUnavailable, err)
	}

	return Usage{Used: used, ResetAt: rs.resetAt(ttlCmd.Val())}, nil
}

// Consume runs the Lua script.
func (rs *RedisStore) Consume(ctx context.Context, userID, key string, amount, limit int64, period time.Duration) (bool, Usage, error) {
	res, err := consumeScript.Run(ctx, rs.client,
		[]string{rs.counterKey(userID, key)},
		amount, limit, period.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, Usage{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 3 {
		return false, Usage{}, errors.Join(ErrStoreUnavailable, fmt.Errorf("unexpected script reply %v", res))
	}

	usage := Usage{Used: res[1]}
	if res[2] > 0 {
		usage.ResetAt = rs.resetAt(time.Duration(res[2]) * time.Millisecond)
	}
	return res[0] == 1, usage, nil
}

// Reset deletes the counter key.
func (rs *RedisStore) Reset(ctx context.Context, userID, key string) (bool, error) {
	n, err := rs.client.Del(ctx, rs.counterKey(userID, key)).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// ResetUser scans and deletes every counter of userID.
func (rs *RedisStore) ResetUser(ctx context.Context, userID string) error {
	pattern := escapeGlob(rs.prefix+":"+userID+":") + "*"

	iter := rs.client.Scan(ctx, 0, pattern, 500).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := rs.client.Del(ctx, keys...).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) resetAt(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return rs.now().Add(ttl)
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
