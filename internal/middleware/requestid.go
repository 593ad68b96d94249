// Package middleware holds the fiber handlers applied ahead of the API
// routes: request id tagging, per-client rate limiting, and HTTP metrics.
package middleware

import (
	"github.com/contentkit/openai-gateway/internal/services/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestID tags every request with a UUID, honoring an X-Request-ID header
// when the caller supplies one. The id is echoed back in the response header
// and in every envelope's meta.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(response.RequestIDKey, id)
		c.Set("X-Request-ID", id)
		return c.Next()
	}
}
