package api

import (
	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/gateway"
	"github.com/contentkit/openai-gateway/internal/services/response"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler serves the admin settings endpoints.
type SettingsHandler struct {
	settings *config.Settings
	client   *gateway.Client
}

// NewSettingsHandler creates a settings handler.
func NewSettingsHandler(settings *config.Settings, client *gateway.Client) *SettingsHandler {
	return &SettingsHandler{settings: settings, client: client}
}

// Get returns the current settings with the API key masked.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	return response.Success(c, h.settings.View())
}

// Update applies a partial settings change. The merged document must pass
// validation before it is persisted; an invalid merge leaves disk untouched
// but the in-memory state is re-read from the last good document.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var update config.SettingsUpdate
	if err := c.BodyParser(&update); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	h.settings.Apply(update)

	if errs := h.settings.Validate(); len(errs) > 0 {
		if err := h.settings.Reload(); err != nil {
			return response.FromError(c, models.NewInternalError(err))
		}
		return response.FromError(c, models.NewValidationError(errs))
	}

	if err := h.settings.Save(); err != nil {
		return response.FromError(c, models.NewInternalError(err))
	}

	return response.Success(c, h.settings.View())
}

// Test issues a minimal generation call to verify the configured key works.
func (h *SettingsHandler) Test(c *fiber.Ctx) error {
	ok := h.client.TestConnection(c.UserContext())
	return response.Success(c, map[string]any{
		"connected": ok,
		"api_key":   h.settings.MaskedAPIKey(),
	})
}
