package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentease/internal/config"

	"github.com/redis/go-redis/v9"
)

var errNoRedisClient = errors.New("redis client is not configured")

// RedisKV is the shared key-value backend for multi-instance deployments.
// Every key is stored under prefix so several environments can share one server.
type RedisKV struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, errNoRedisClient
	}
	val, err := r.client.Get(ctx, r.key(key)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return val, true, nil
}

// Set stores value; a zero ttl keeps it until deleted.
func (r *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.client == nil {
		return errNoRedisClient
	}
	if err := r.client.Set(ctx, r.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return errNoRedisClient
	}
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

// CheckRateLimit counts one attempt in a fixed window starting at the first attempt.
func (r *RedisKV) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, errNoRedisClient
	}
	k := r.key("rate_limit:" + key)

	// NX keeps the window anchored at the first attempt.
	var incr *redis.IntCmd
	if _, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, window)
		return nil
	}); err != nil {
		return false, fmt.Errorf("redis rate limit %q: %w", key, err)
	}
	return incr.Val() <= int64(limit), nil
}

func (r *RedisKV) Ping(ctx context.Context) error {
	if r.client == nil {
		return errNoRedisClient
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
