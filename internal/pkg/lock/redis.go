package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker coordinates across service instances sharing one Redis.
type RedisLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	backoff time.Duration
	retries int
}

func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  redislock.New(rdb),
		ttl:     ttl,
		backoff: 100 * time.Millisecond,
		retries: 10,
	}
}

func (l *RedisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.backoff), l.retries),
	}

	lk, err := l.client.Obtain(ctx, key, l.ttl, opts)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}

	return func() {
		// Release on a fresh context so a cancelled request still frees the key.
		if err := lk.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			slog.Warn("failed to release lock", "key", key, "error", err)
		}
	}, nil
}
