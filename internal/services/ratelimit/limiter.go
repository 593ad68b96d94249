// Package ratelimit implements per-client sliding-window admission control.
// Every check prunes entries older than the window before counting, so
// admission always reflects the trailing interval ending at now.
//
// Counters must survive process restarts; the Redis and file stores both
// satisfy that, the in-memory limiter exists for tests and single-process
// development. All implementations accept small over/under-admission under
// concurrent access: the limiter is a coarse abuse guard, not a meter.
package ratelimit

import "context"

const (
	// DefaultLimit is the admitted request budget per identity per window.
	DefaultLimit = 30
	// DefaultWindowSeconds is the sliding window length.
	DefaultWindowSeconds = 60
	// idleExpirySeconds is how long an untouched counter survives.
	idleExpirySeconds = 24 * 60 * 60
)

// Limiter admits or rejects a request for a client identity. A rejection is
// a RATE_LIMIT_EXCEEDED *models.GatewayError carrying a retry-after hint;
// any other error means the backing store misbehaved and the caller should
// fail open.
type Limiter interface {
	Check(ctx context.Context, identity string) error
}
