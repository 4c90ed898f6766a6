package auth

import (
	"context"
	"time"

	"github.com/ougajs-sys/easyflows-backend/pkg/redis"
)

// RedisRateLimiter counts attempts in redis with a fixed window per key.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter wraps the shared redis client.
func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client}
}

// Allow increments the counter for the key and reports whether the attempt
// is within the limit. The window TTL is set on the first increment.
func (l *RedisRateLimiter) Allow(ctx context.Context, scope, key string, limit int, window time.Duration) (bool, error) {
	counterKey := l.client.RateLimitKey(scope, key)
	count, err := l.client.Incr(ctx, counterKey)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, counterKey, window); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
