package memory

import (
	"context"
	"sync"
	"time"

	"assessment-service/internal/app"
)

// RateLimiter is a per-process fixed-window counter. Use the Redis limiter
// when running more than one instance.
type RateLimiter struct {
	mu      sync.Mutex
	clock   func() time.Time
	windows map[string]window
}

type window struct {
	count int
	reset time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{clock: time.Now, windows: make(map[string]window)}
}

func (l *RateLimiter) Allow(_ context.Context, key string, limit int, period time.Duration) (app.RateDecision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = window{reset: now.Add(period)}
		l.sweepLocked(now)
	}
	w.count++
	l.windows[key] = w

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return app.RateDecision{
		Allowed:   w.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		Reset:     w.reset,
	}, nil
}

// sweepLocked drops expired windows so idle clients do not accumulate.
func (l *RateLimiter) sweepLocked(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
}
