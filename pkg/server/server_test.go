package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppUnderTest() *fiber.App {
	app := createFiberApp(&config.Config{})
	app.Get("/thing", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Get("/broken", func(c *fiber.Ctx) error {
		return models.NewUpstreamError(models.ErrCodeServiceUnavailable,
			"OpenAI service temporarily unavailable. Please try again.", http.StatusServiceUnavailable)
	})
	return app
}

func decodeEnvelope(t *testing.T, resp *http.Response) models.APIResponse {
	t.Helper()
	var body models.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestErrorHandlerUnknownRouteEnvelope(t *testing.T) {
	app := newAppUnderTest()

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, models.ErrCodeNotFound, body.Error.Code)
	assert.Equal(t, "Endpoint not found", body.Error.Message)
	assert.NotNil(t, body.Meta)
}

func TestErrorHandlerWrongMethodEnvelope(t *testing.T) {
	app := newAppUnderTest()

	resp, err := app.Test(httptest.NewRequest("POST", "/thing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusMethodNotAllowed, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, models.ErrCodeMethodNotAllowed, body.Error.Code)
	assert.Equal(t, "Method not allowed", body.Error.Message)
}

func TestErrorHandlerRendersGatewayErrors(t *testing.T) {
	app := newAppUnderTest()

	resp, err := app.Test(httptest.NewRequest("GET", "/broken", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, models.ErrCodeServiceUnavailable, body.Error.Code)
}

func TestErrorHandlerHidesUnstructuredErrors(t *testing.T) {
	app := createFiberApp(&config.Config{})
	app.Get("/panic-ish", func(c *fiber.Ctx) error {
		return assert.AnError
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/panic-ish", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body := decodeEnvelope(t, resp)
	require.NotNil(t, body.Error)
	assert.Equal(t, models.ErrCodeInternal, body.Error.Code)
	// Raw error text must not leak through the envelope.
	assert.Equal(t, "Internal server error", body.Error.Message)
}

func TestCreateLimiterPrefersRedis(t *testing.T) {
	cfg := &config.Config{}
	cfg.RateLimit.Limit = 30
	cfg.RateLimit.WindowSeconds = 60

	s := &Server{config: cfg, redis: redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})}
	_, ok := s.createLimiter().(*ratelimit.RedisLimiter)
	assert.True(t, ok, "redis client configured: expected the redis-backed limiter")
}

func TestCreateLimiterFallsBackToFiles(t *testing.T) {
	cfg := &config.Config{}
	cfg.RateLimit.Limit = 30
	cfg.RateLimit.WindowSeconds = 60
	cfg.Storage.CacheDir = t.TempDir()

	s := &Server{config: cfg}
	_, ok := s.createLimiter().(*ratelimit.FileLimiter)
	assert.True(t, ok, "no redis client: expected the file-backed limiter")
}
