package ratelimit

import (
	"context"
	"time"
)

type windowCounter interface {
	FixedWindowHit(ctx context.Context, scope string, window time.Duration) (int64, time.Duration, error)
}

// RedisLimiter shares windows between replicas through Redis INCR/PEXPIRE.
// The counter keeps growing past limit while the window is open, which is
// harmless because every hit above limit is rejected.
type RedisLimiter struct {
	store windowCounter
	now   func() time.Time
}

// NewRedisLimiter wraps a client exposing FixedWindowHit (pkg/redis.Client).
func NewRedisLimiter(store windowCounter) *RedisLimiter {
	return &RedisLimiter{store: store, now: time.Now}
}

func (r *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	count, ttl, err := r.store.FixedWindowHit(ctx, key, window)
	if err != nil {
		return Decision{}, err
	}
	resetAt := r.now().Add(ttl)
	if count > int64(limit) {
		return Decision{Allowed: false, Remaining: 0, ResetAt: resetAt}, nil
	}
	return Decision{Allowed: true, Remaining: max(0, limit-int(count)), ResetAt: resetAt}, nil
}
