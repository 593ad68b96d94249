package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/contentkit/openai-gateway/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter keeps one sorted set of request timestamps per identity.
// Entries older than the window are pruned before counting; the key expires
// after 24 hours of inactivity so idle identities are evicted by Redis
// itself.
type RedisLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindowSeconds * time.Second
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window}
}

// Check prunes, counts, and either rejects or records the current request.
// The prune-count-add sequence is not atomic across concurrent callers; the
// resulting slack is accepted.
func (l *RedisLimiter) Check(ctx context.Context, identity string) error {
	key := "rate_limit:" + identity
	now := time.Now().UnixMilli()
	windowStart := now - l.window.Milliseconds()

	pipe := l.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))
	countCmd := pipe.ZCard(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rate limit store unavailable: %w", err)
	}

	if countCmd.Val() >= int64(l.limit) {
		return models.NewRateLimitExceededError(l.limit, int(l.window.Seconds()))
	}

	pipe = l.rdb.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: fmt.Sprintf("%d", now)})
	pipe.Expire(ctx, key, idleExpirySeconds*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rate limit store unavailable: %w", err)
	}

	return nil
}
