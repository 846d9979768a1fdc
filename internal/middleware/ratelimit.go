package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter applies a fixed-window rate limit to login attempts keyed by
// client address. A nil limiter allows everything, so deployments without
// Redis keep working unchanged.
type LoginLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewLoginLimiter(client *redis.Client, perMinute int) *LoginLimiter {
	if client == nil {
		return nil
	}
	return &LoginLimiter{client: client, limit: perMinute, window: time.Minute}
}

// Allow reports whether another login attempt from the given key may proceed.
// Redis errors fail open; losing rate limiting is preferable to losing login.
func (l *LoginLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil {
		return true
	}

	redisKey := fmt.Sprintf("ratelimit:login:%s", key)
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true
	}
	if count == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}
	return count <= int64(l.limit)
}
