package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/contentkit/openai-gateway/internal/models"
)

// MemoryLimiter is a process-local sliding window limiter. Counters do not
// survive restarts, so it only backs tests and single-process development.
type MemoryLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindowSeconds * time.Second
	}
	return &MemoryLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// Check prunes the identity's window, then admits or rejects.
func (l *MemoryLimiter) Check(_ context.Context, identity string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	filtered := l.requests[identity][:0]
	for _, ts := range l.requests[identity] {
		if ts.After(cutoff) {
			filtered = append(filtered, ts)
		}
	}

	if len(filtered) >= l.limit {
		l.requests[identity] = filtered
		return models.NewRateLimitExceededError(l.limit, int(l.window.Seconds()))
	}

	l.requests[identity] = append(filtered, now)
	return nil
}
