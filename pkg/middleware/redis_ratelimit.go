package middleware

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisLimiter implements fixed-window rate limiting on Redis so counters
// are shared across instances. Without a shared store the effective limit in
// a cluster is max × instanceCount.
type RedisLimiter struct {
	client *redis.Client
	limits Limits
	prefix string
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter
func NewRedisLimiter(client *redis.Client, limits Limits, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client: client,
		limits: limits,
		prefix: prefix,
	}
}

// Allow checks and counts one request. INCR is atomic on the server, so
// concurrent requests across instances cannot both be admitted past the
// limit. The key's TTL marks the window end; it is set only when the INCR
// opens a fresh window, never extended by later requests.
func (l *RedisLimiter) Allow(ctx context.Context, identity string, class RouteClass) (Decision, error) {
	limit := l.limits.For(class)
	key := fmt.Sprintf("%s:%s:%s", l.prefix, class, identity)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, limit.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("redis expire: %w", err)
		}
	}

	remaining := limit.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	decision := Decision{
		Allowed:   count <= int64(limit.MaxRequests),
		Limit:     limit.MaxRequests,
		Remaining: remaining,
	}

	if !decision.Allowed {
		decision.RetryAfter = limit.Window
		if ttl, err := l.client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			decision.RetryAfter = ttl
		}
	}

	return decision, nil
}

// Reset clears the counter for a key (tests and admin tooling)
func (l *RedisLimiter) Reset(ctx context.Context, identity string, class RouteClass) error {
	key := fmt.Sprintf("%s:%s:%s", l.prefix, class, identity)
	return l.client.Del(ctx, key).Err()
}

// HealthCheck verifies Redis connectivity
func (l *RedisLimiter) HealthCheck(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
