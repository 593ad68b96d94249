package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/contentkit/openai-gateway/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseStatusFromHandlerError(t *testing.T) {
	app := fiber.New()

	var got int
	app.Use(func(c *fiber.Ctx) error {
		err := c.Next()
		got = responseStatus(c, err)
		return err
	})
	app.Get("/unavailable", func(c *fiber.Ctx) error {
		return models.NewUpstreamError(models.ErrCodeServiceUnavailable, "down", 503)
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return models.NewValidationError(map[string]string{"content": "too short"})
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return assert.AnError
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	cases := []struct {
		path string
		want int
	}{
		{"/unavailable", fiber.StatusServiceUnavailable},
		{"/invalid", fiber.StatusBadRequest},
		{"/plain", fiber.StatusInternalServerError},
		{"/ok", fiber.StatusOK},
		// Unmatched route: fiber raises ErrNotFound, counted as 404 even
		// though the error handler has not written the response yet.
		{"/nowhere", fiber.StatusNotFound},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		_, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "path %s", tc.path)
	}
}
