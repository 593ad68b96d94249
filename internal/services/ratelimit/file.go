package ratelimit

import (
	"context"
	"crypto/md5" // #nosec G501 - identity bucketing only, not a security boundary
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/contentkit/openai-gateway/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// FileLimiter persists one JSON timestamp list per identity under dir,
// keyed by a hash of the identity. It is the durable fallback when Redis is
// not configured. Concurrent read-modify-write races between workers can
// over- or under-admit slightly; that slack is accepted by design of the
// admission policy.
type FileLimiter struct {
	dir    string
	limit  int
	window time.Duration

	// now and chance are injectable for tests.
	now    func() time.Time
	chance func() int
}

// NewFileLimiter creates a file-backed limiter rooted at dir.
func NewFileLimiter(dir string, limit int, window time.Duration) *FileLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindowSeconds * time.Second
	}
	return &FileLimiter{
		dir:    dir,
		limit:  limit,
		window: window,
		now:    time.Now,
		chance: func() int { return rand.Intn(100) },
	}
}

// Check reads the identity's counter file, prunes expired entries, and
// either rejects or appends the current timestamp. Roughly 5% of admitted
// calls also sweep counters untouched for 24 hours, so cleanup needs no
// dedicated timer.
func (l *FileLimiter) Check(_ context.Context, identity string) error {
	path := l.counterPath(identity)
	now := l.now().Unix()
	cutoff := now - int64(l.window.Seconds())

	var entries []int64
	if raw, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(raw, &entries); err != nil {
			entries = nil
		}
	}

	pruned := entries[:0]
	for _, ts := range entries {
		if ts > cutoff {
			pruned = append(pruned, ts)
		}
	}

	if len(pruned) >= l.limit {
		fiberlog.Warnf("Rate limit exceeded for identity %s", identity)
		return models.NewRateLimitExceededError(l.limit, int(l.window.Seconds()))
	}

	pruned = append(pruned, now)

	raw, err := json.Marshal(pruned)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return err
	}

	if l.chance() < 5 {
		l.cleanup()
	}

	return nil
}

func (l *FileLimiter) counterPath(identity string) string {
	sum := md5.Sum([]byte(identity)) // #nosec G401
	return filepath.Join(l.dir, "rate_limit_"+hex.EncodeToString(sum[:])+".json")
}

// cleanup removes counter files untouched for the idle expiry period.
func (l *FileLimiter) cleanup() {
	matches, err := filepath.Glob(filepath.Join(l.dir, "rate_limit_*.json"))
	if err != nil {
		return
	}

	cutoff := l.now().Add(-idleExpirySeconds * time.Second)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				fiberlog.Debugf("Failed to remove stale rate limit counter %s: %v", path, err)
			}
		}
	}
}
