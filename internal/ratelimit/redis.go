package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "enumm:ratelimit:login:"

// RedisLimiter shares attempt counters across instances through Redis.
// INCR is atomic per key, so the linearizability contract holds without
// client-side locking; the window TTL is pinned to the first failure.
type RedisLimiter struct {
	client *redis.Client
	cfg    Config
}

// NewRedisLimiter builds a Redis-backed limiter.
func NewRedisLimiter(client *redis.Client, cfg Config) (*RedisLimiter, error) {
	if client == nil {
		return nil, fmt.Errorf("ratelimit: redis client is required")
	}
	return &RedisLimiter{client: client, cfg: cfg.withDefaults()}, nil
}

// IsLimited implements Limiter. Redis expires stale records itself.
func (l *RedisLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	count, err := l.client.Get(ctx, redisKeyPrefix+key).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ratelimit: read counter: %w", err)
	}

	return count >= l.cfg.MaxAttempts, nil
}

// RecordAttempt implements Limiter. The TTL is set only when the increment
// opens a fresh window, so later failures do not slide the expiry forward.
func (l *RedisLimiter) RecordAttempt(ctx context.Context, key string) error {
	full := redisKeyPrefix + key

	count, err := l.client.Incr(ctx, full).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: increment counter: %w", err)
	}

	if count == 1 {
		if err := l.client.PExpire(ctx, full, l.cfg.Window).Err(); err != nil {
			return fmt.Errorf("ratelimit: set window expiry: %w", err)
		}
	}

	return nil
}

// Reset implements Limiter.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit: reset counter: %w", err)
	}
	return nil
}
