package middleware

import (
	"net"
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/ratelimit"
	"github.com/contentkit/openai-gateway/internal/services/response"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
)

// skipPaths are exempt from admission control.
var skipPaths = map[string]bool{
	"/api/health": true,
	"/metrics":    true,
}

// RateLimit enforces per-client admission control. Limiter store failures
// fail open: availability of the facade is worth more than strictness of an
// abuse guard.
func RateLimit(limiter ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipPaths[c.Path()] {
			return c.Next()
		}

		if err := limiter.Check(c.UserContext(), ClientIdentity(c)); err != nil {
			if _, ok := models.AsGatewayError(err); ok {
				return response.FromError(c, err)
			}
			fiberlog.Warnf("Rate limit store error, failing open: %v", err)
		}

		return c.Next()
	}
}

// ClientIdentity derives the rate limit bucket for a request. The first
// X-Forwarded-For entry wins when it parses as an IP, then the peer address;
// anything unidentifiable shares the "unknown" bucket.
func ClientIdentity(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}

	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
