package redis

import (
	"context"
	"fmt"
	"time"

	"assessment-service/internal/app"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window counter shared by every service instance.
// Counters live under ratelimit:{key} and expire with their window.
type RateLimiter struct {
	client *redis.Client
	clock  func() time.Time
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client, clock: time.Now}
}

func (l *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (app.RateDecision, error) {
	redisKey := "ratelimit:" + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return app.RateDecision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	ttl := pttl.Val()
	if ttl <= 0 {
		// First hit of the window (or a key that lost its expiry).
		if err := l.client.PExpire(ctx, redisKey, window).Err(); err != nil {
			return app.RateDecision{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
		ttl = window
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return app.RateDecision{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		Reset:     l.clock().Add(ttl),
	}, nil
}
