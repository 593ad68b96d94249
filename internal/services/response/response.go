// Package response writes the uniform API envelope. Every inbound endpoint,
// success or failure, replies with {success, data, error, meta}; meta always
// carries the request id and a timestamp.
package response

import (
	"strconv"
	"time"

	"github.com/contentkit/openai-gateway/internal/models"

	"github.com/gofiber/fiber/v2"
)

// RequestIDKey is the locals key the request id middleware populates.
const RequestIDKey = "request_id"

func baseMeta(c *fiber.Ctx) map[string]any {
	meta := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if id, ok := c.Locals(RequestIDKey).(string); ok && id != "" {
		meta["request_id"] = id
	}
	return meta
}

// Success writes a 200 success envelope.
func Success(c *fiber.Ctx, data any) error {
	return SuccessWithMeta(c, data, nil)
}

// SuccessWithMeta writes a 200 success envelope with extra meta entries.
func SuccessWithMeta(c *fiber.Ctx, data any, extra map[string]any) error {
	meta := baseMeta(c)
	for k, v := range extra {
		meta[k] = v
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse(data, meta))
}

// Error writes a failure envelope with an explicit status.
func Error(c *fiber.Ctx, status int, message string, code models.ErrorCode) error {
	return c.Status(status).JSON(models.ErrorResponse(message, code, nil, baseMeta(c)))
}

// FromError writes the failure envelope for a service error. The status,
// field details, and retry hint all come from the structured error; anything
// unstructured is sanitized to a generic 500 first.
func FromError(c *fiber.Ctx, err error) error {
	ge := models.SanitizeError(err)

	var data any
	if len(ge.FieldErrors) > 0 {
		data = map[string]any{"errors": ge.FieldErrors}
	}

	meta := baseMeta(c)
	if ge.RetryAfter > 0 {
		meta["retry_after"] = ge.RetryAfter
		c.Set("Retry-After", strconv.Itoa(ge.RetryAfter))
	}

	return c.Status(ge.StatusCode()).JSON(models.ErrorResponse(ge.Message, ge.Code, data, meta))
}
