package api

import (
	"io"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/response"
	"github.com/contentkit/openai-gateway/internal/services/upstream"

	"github.com/gofiber/fiber/v2"
)

// UpstreamHandler serves the thin passthrough endpoints.
type UpstreamHandler struct {
	service *upstream.Service
}

// NewUpstreamHandler creates an upstream passthrough handler.
func NewUpstreamHandler(service *upstream.Service) *UpstreamHandler {
	return &UpstreamHandler{service: service}
}

// Embeddings creates embeddings for the posted input.
func (h *UpstreamHandler) Embeddings(c *fiber.Ctx) error {
	var req models.EmbeddingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.Embeddings(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Images generates images for the posted prompt.
func (h *UpstreamHandler) Images(c *fiber.Ctx) error {
	var req models.ImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.Images(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Transcribe submits an uploaded audio file for transcription.
func (h *UpstreamHandler) Transcribe(c *fiber.Ctx) error {
	filename, content, err := formFile(c, "file")
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.service.Transcribe(c.UserContext(), filename, content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Moderate runs content moderation on the posted input.
func (h *UpstreamHandler) Moderate(c *fiber.Ctx) error {
	var req models.ModerationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.Moderate(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Models lists the models available to the configured key.
func (h *UpstreamHandler) Models(c *fiber.Ctx) error {
	result, err := h.service.Models(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Files lists the files stored upstream.
func (h *UpstreamHandler) Files(c *fiber.Ctx) error {
	result, err := h.service.Files(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Upload stores an uploaded file upstream.
func (h *UpstreamHandler) Upload(c *fiber.Ctx) error {
	filename, content, err := formFile(c, "file")
	if err != nil {
		return response.FromError(c, err)
	}

	purpose := c.FormValue("purpose")

	result, err := h.service.Upload(c.UserContext(), filename, purpose, content)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// Raw forwards an arbitrary relative-path call to the provider.
func (h *UpstreamHandler) Raw(c *fiber.Ctx) error {
	var req models.RawRequest
	if err := c.BodyParser(&req); err != nil {
		return response.FromError(c, models.NewValidationError(map[string]string{
			"body": "Invalid request body",
		}))
	}

	result, err := h.service.Raw(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, result)
}

// formFile reads a multipart file field fully into memory so the gateway can
// rebuild the request body across retries.
func formFile(c *fiber.Ctx, field string) (string, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return "", nil, models.NewValidationError(map[string]string{
			field: "File is required",
		})
	}

	f, err := header.Open()
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", nil, models.NewInternalError(err)
	}

	return header.Filename, content, nil
}
