package ratelimit

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/contentkit/openai-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileLimiterAt(dir string, limit int, window time.Duration, now time.Time) *FileLimiter {
	l := NewFileLimiter(dir, limit, window)
	l.now = func() time.Time { return now }
	l.chance = func() int { return 99 } // never trigger cleanup
	return l
}

func TestFileLimiterAdmitsUpToLimit(t *testing.T) {
	l := newFileLimiterAt(t.TempDir(), 3, time.Minute, time.Now())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Check(ctx, "1.2.3.4"), "request %d should be admitted", i+1)
	}

	err := l.Check(ctx, "1.2.3.4")
	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeRateLimitExceeded, ge.Code)
	assert.Equal(t, 60, ge.RetryAfter)
}

func TestFileLimiterWindowSlides(t *testing.T) {
	dir := t.TempDir()
	start := time.Now()
	ctx := context.Background()

	l := newFileLimiterAt(dir, 2, time.Minute, start)
	require.NoError(t, l.Check(ctx, "1.2.3.4"))
	require.NoError(t, l.Check(ctx, "1.2.3.4"))
	require.Error(t, l.Check(ctx, "1.2.3.4"))

	// Advance past the window; old entries are pruned.
	l.now = func() time.Time { return start.Add(61 * time.Second) }
	assert.NoError(t, l.Check(ctx, "1.2.3.4"))
}

func TestFileLimiterCountersSurviveNewInstance(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	ctx := context.Background()

	first := newFileLimiterAt(dir, 2, time.Minute, now)
	require.NoError(t, first.Check(ctx, "1.2.3.4"))
	require.NoError(t, first.Check(ctx, "1.2.3.4"))

	// A fresh limiter over the same directory sees the same counters.
	second := newFileLimiterAt(dir, 2, time.Minute, now)
	require.Error(t, second.Check(ctx, "1.2.3.4"))
}

func TestFileLimiterIdentitiesAreIndependent(t *testing.T) {
	l := newFileLimiterAt(t.TempDir(), 1, time.Minute, time.Now())
	ctx := context.Background()

	require.NoError(t, l.Check(ctx, "1.1.1.1"))
	require.Error(t, l.Check(ctx, "1.1.1.1"))
	assert.NoError(t, l.Check(ctx, "2.2.2.2"))
}

func TestFileLimiterToleratesCorruptCounterFile(t *testing.T) {
	dir := t.TempDir()
	l := newFileLimiterAt(dir, 2, time.Minute, time.Now())
	ctx := context.Background()

	path := l.counterPath("1.2.3.4")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	// Corrupt state resets the counter instead of erroring.
	assert.NoError(t, l.Check(ctx, "1.2.3.4"))
}

func TestFileLimiterCleanupRemovesStaleCounters(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	ctx := context.Background()

	stale := filepath.Join(dir, "rate_limit_deadbeef.json")
	require.NoError(t, os.WriteFile(stale, []byte("[1]"), 0o600))
	old := now.Add(-25 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))

	l := newFileLimiterAt(dir, 5, time.Minute, now)
	l.chance = func() int { return 0 } // always trigger cleanup

	require.NoError(t, l.Check(ctx, "1.2.3.4"))

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale counter should have been removed")
}
