package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tracknourish/tracknourish/internal/config"
)

const rateLimitPrefix = "ratelimit:"

// RateLimiter implements a fixed-window counter in Redis, keyed per route and
// source IP. Injected into the handlers guarding sign-up, sign-in, send-otp
// and resend-email.
type RateLimiter struct {
	client *Client
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Consume counts one request for (route, key) against the given limit.
// Returns (allowed, remaining, resetTime, error).
func (r *RateLimiter) Consume(ctx context.Context, route, key string, limit config.RouteLimit) (bool, int, time.Time, error) {
	fullKey := fmt.Sprintf("%s%s:%s", rateLimitPrefix, route, key)
	window := limit.Window
	if window <= 0 {
		window = time.Minute
	}
	windowEnd := time.Now().Truncate(window).Add(window)

	pipe := r.client.rdb.Pipeline()

	// Increment counter
	incrCmd := pipe.Incr(ctx, fullKey)

	// Set expiry if key is new
	pipe.ExpireNX(ctx, fullKey, window)

	_, err := pipe.Exec(ctx)
	if err != nil && err != redis.Nil {
		return false, 0, time.Time{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incrCmd.Val()
	remaining := limit.Requests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= int64(limit.Requests)

	return allowed, remaining, windowEnd, nil
}

// Reset clears the counter for (route, key).
func (r *RateLimiter) Reset(ctx context.Context, route, key string) error {
	fullKey := fmt.Sprintf("%s%s:%s", rateLimitPrefix, route, key)
	return r.client.rdb.Del(ctx, fullKey).Err()
}
