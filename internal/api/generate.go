package api

import (
	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/generation"
	"github.com/contentkit/openai-gateway/internal/services/response"

	"github.com/gofiber/fiber/v2"
)

// GenerateHandler serves the content generation endpoints.
type GenerateHandler struct {
	service *generation.Service
}

// NewGenerateHandler creates a generation handler.
func NewGenerateHandler(service *generation.Service) *GenerateHandler {
	return &GenerateHandler{service: service}
}

// Title generates an SEO title for the posted content.
func (h *GenerateHandler) Title(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.GenerateTitle(c.UserContext(), req.Content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Description generates a meta description for the posted content.
func (h *GenerateHandler) Description(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.GenerateDescription(c.UserContext(), req.Content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Tags generates tags for the posted content.
func (h *GenerateHandler) Tags(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.GenerateTags(c.UserContext(), req.Content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Timestamps generates chapter markers for the posted transcript.
func (h *GenerateHandler) Timestamps(c *fiber.Ctx) error {
	var req models.TimestampsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.GenerateTimestamps(c.UserContext(), req.Transcript)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Shorts generates short-form video ideas for the posted content and platform.
func (h *GenerateHandler) Shorts(c *fiber.Ctx) error {
	var req models.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.GenerateShortsIdeas(c.UserContext(), req.Content, req.Platform)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}
