package middlewares

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed window limiter shared by every API replica.
// Each window is one counter key that expires with the window.
type RedisLimiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:    rdb,
		limit:  int64(limit),
		window: window,
		prefix: "usershub:ratelimit:",
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	k := l.prefix + key

	count, err := l.rdb.Incr(ctx, k).Result()

	if err != nil {
		return false, 0, err
	}

	// first hit opens the window
	if count == 1 {
		err = l.rdb.PExpire(ctx, k, l.window).Err()

		if err != nil {
			return false, 0, err
		}
	}

	if count <= l.limit {
		return true, 0, nil
	}

	ttl, err := l.rdb.PTTL(ctx, k).Result()

	if err != nil {
		return false, 0, err
	}

	// a key without expiry would block forever; repair it
	if ttl < 0 {
		_ = l.rdb.PExpire(ctx, k, l.window).Err()
		ttl = l.window
	}

	return false, ttl, nil
}
