package feature

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisProvider stores toggles in two Redis hashes: "<prefix>:values" holds
// "1"/"0" per key and "<prefix>:updated" holds the unix milli timestamp of the
// last change.
type RedisProvider struct {
	client     redis.UniversalClient
	valuesKey  string
	updatedKey string
	now        func() time.Time
}

// RedisProviderOption configures a RedisProvider.
type RedisProviderOption func(*RedisProvider)

// WithKeyPrefix sets the hash key prefix. Defaults to "entitlements:features".
func WithKeyPrefix(prefix string) RedisProviderOption {
	return func(p *RedisProvider) {
		if prefix != "" {
			p.valuesKey = prefix + ":values"
			p.updatedKey = prefix + ":updated"
		}
	}
}

// NewRedisProvider wraps client. The client stays owned by the caller.
func NewRedisProvider(client redis.UniversalClient, opts ...RedisProviderOption) *RedisProvider {
	p := &RedisProvider{
		client:     client,
		valuesKey:  "entitlements:features:values",
		updatedKey: "entitlements:features:updated",
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsOn returns the stored value. Missing keys read as off.
func (p *RedisProvider) IsOn(ctx context.Context, key string) (bool, error) {
	val, err := p.client.HGet(ctx, p.valuesKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Join(ErrOperationFailed, err)
	}
	return val == "1", nil
}

// GetFlag returns the stored flag.
func (p *RedisProvider) GetFlag(ctx context.Context, key string) (*Flag, error) {
	var valCmd, updCmd *redis.StringCmd
	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		valCmd = pipe.HGet(ctx, p.valuesKey, key)
		updCmd = pipe.HGet(ctx, p.updatedKey, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Join(ErrOperationFailed, err)
	}

	val, err := valCmd.Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrFlagNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrOperationFailed, err)
	}

	flag := &Flag{Key: key, Enabled: val == "1"}
	if ms, err := updCmd.Int64(); err == nil {
		flag.UpdatedAt = time.UnixMilli(ms)
	}
	return flag, nil
}

// All returns every stored toggle.
func (p *RedisProvider) All(ctx context.Context) (map[string]bool, error) {
	values, err := p.client.HGetAll(ctx, p.valuesKey).Result()
	if err != nil {
		return nil, errors.Join(ErrOperationFailed, err)
	}
	result := make(map[string]bool, len(values))
	for key, val := range values {
		result[key] = val == "1"
	}
	return result, nil
}

// Set writes the value and timestamp in one transaction.
func (p *RedisProvider) Set(ctx context.Context, key string, on bool) error {
	if key == "" {
		return errors.Join(ErrInvalidFlag, errors.New("flag key cannot be empty"))
	}
	val := "0"
	if on {
		val = "1"
	}
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, p.valuesKey, key, val)
		pipe.HSet(ctx, p.updatedKey, key, strconv.FormatInt(p.now().UnixMilli(), 10))
		return nil
	})
	if err != nil {
		return errors.Join(ErrOperationFailed, err)
	}
	return nil
}

// Delete removes a toggle.
func (p *RedisProvider) Delete(ctx context.Context, key string) error {
	var delCmd *redis.IntCmd
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		delCmd = pipe.HDel(ctx, p.valuesKey, key)
		pipe.HDel(ctx, p.updatedKey, key)
		return nil
	})
	if err != nil {
		return errors.Join(ErrOperationFailed, err)
	}
	if delCmd.Val() == 0 {
		return ErrFlagNotFound
	}
	return nil
}

// Close does not close the shared client.
func (p *RedisProvider) Close() error {
	return nil
}
