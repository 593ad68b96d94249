package api

import (
	"context"
	"time"

	"github.com/contentkit/openai-gateway/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	settings    *config.Settings
	redisClient *redis.Client
}

// NewHealthHandler creates a health check handler. redisClient may be nil
// when the file-backed rate limiter is in use.
func NewHealthHandler(settings *config.Settings, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{settings: settings, redisClient: redisClient}
}

// HealthCheck returns the health status of the service and its dependencies.
// A missing API key degrades the service but does not take it down: the
// settings endpoints still work so an operator can fix the configuration.
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	checks := fiber.Map{
		"api_key": boolStatus(h.settings.HasAPIKey(), "configured", "missing"),
	}

	overallStatus := "healthy"
	statusCode := fiber.StatusOK

	if h.redisClient != nil {
		redisStatus := h.checkRedis()
		checks["redis"] = redisStatus
		if redisStatus != "healthy" {
			overallStatus = "degraded"
			statusCode = fiber.StatusServiceUnavailable
		}
	}

	if !h.settings.HasAPIKey() {
		overallStatus = "degraded"
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (h *HealthHandler) checkRedis() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return "unhealthy"
	}
	return "healthy"
}

func boolStatus(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
