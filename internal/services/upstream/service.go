// Package upstream exposes the thin passthrough operations over the outbound
// gateway: embeddings, images, transcription, moderation, model and file
// listings, uploads, and the raw escape hatch. Each operation applies
// defaults and input validation, then forwards the payload unchanged.
package upstream

import (
	"context"
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/gateway"
	"github.com/contentkit/openai-gateway/internal/validation"
)

const (
	defaultEmbeddingModel     = "text-embedding-3-small"
	defaultTranscriptionModel = "gpt-4o-transcribe"
	defaultImageCount         = 1
	defaultImageSize          = "1024x1024"
	defaultImageFormat        = "b64_json"
)

// Service fronts the passthrough endpoints.
type Service struct {
	client *gateway.Client
}

// NewService creates an upstream passthrough service.
func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Embeddings creates embeddings for the request input. The legacy "text"
// field is accepted as an alias for "input".
func (s *Service) Embeddings(ctx context.Context, req models.EmbeddingsRequest) (map[string]any, error) {
	input := req.Input
	if input == nil {
		input = req.Text
	}
	if input == nil || input == "" {
		return nil, models.NewValidationError(map[string]string{
			"input": "Input is required",
		})
	}

	model := req.Model
	if model == "" {
		model = defaultEmbeddingModel
	}

	return s.client.Embeddings(ctx, map[string]any{
		"model": model,
		"input": input,
	})
}

// Images generates images from a prompt, filling in count, size, and
// response format defaults.
func (s *Service) Images(ctx context.Context, req models.ImagesRequest) (map[string]any, error) {
	if err := validation.New().Required(req.Prompt, "prompt").Err(); err != nil {
		return nil, err
	}

	n := req.Options.N
	if n <= 0 {
		n = defaultImageCount
	}
	size := req.Options.Size
	if size == "" {
		size = defaultImageSize
	}
	format := req.Options.ResponseFormat
	if format == "" {
		format = defaultImageFormat
	}

	return s.client.Images(ctx, map[string]any{
		"prompt":          req.Prompt,
		"n":               n,
		"size":            size,
		"response_format": format,
	})
}

// Transcribe submits an audio file for transcription.
func (s *Service) Transcribe(ctx context.Context, filename string, content []byte) (map[string]any, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError(map[string]string{
			"file": "Audio file is required",
		})
	}

	part := gateway.Part{FieldName: "file", FileName: filename, Content: content}
	return s.client.Transcribe(ctx, part, map[string]string{
		"model": defaultTranscriptionModel,
	})
}

// Moderate runs content moderation. The legacy "text" field is accepted as
// an alias for "input".
func (s *Service) Moderate(ctx context.Context, req models.ModerationRequest) (map[string]any, error) {
	input := req.Input
	if input == nil {
		input = req.Text
	}
	if input == nil || input == "" {
		return nil, models.NewValidationError(map[string]string{
			"input": "Input is required",
		})
	}

	return s.client.Moderations(ctx, map[string]any{"input": input})
}

// Models lists the models available to the configured key.
func (s *Service) Models(ctx context.Context) (map[string]any, error) {
	return s.client.Models(ctx)
}

// Files lists uploaded files.
func (s *Service) Files(ctx context.Context) (map[string]any, error) {
	return s.client.Files(ctx)
}

// Upload stores a file upstream under the given purpose. Fine-tune uploads
// must be JSONL, enforced here before any bytes leave the process.
func (s *Service) Upload(ctx context.Context, filename, purpose string, content []byte) (map[string]any, error) {
	fields := map[string]string{}
	if len(content) == 0 {
		fields["file"] = "File is required"
	}
	if purpose == "" {
		purpose = "assistants"
	}
	if purpose == "fine-tune" && !strings.HasSuffix(strings.ToLower(filename), ".jsonl") {
		fields["file"] = "Fine-tune files must be in JSONL format"
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError(fields)
	}

	part := gateway.Part{FieldName: "file", FileName: filename, Content: content}
	return s.client.UploadFile(ctx, part, map[string]string{"purpose": purpose})
}

// Raw forwards an arbitrary relative-path call to the provider.
func (s *Service) Raw(ctx context.Context, req models.RawRequest) (map[string]any, error) {
	method := req.Method
	if method == "" {
		method = "POST"
	}
	return s.client.Raw(ctx, req.Endpoint, method, req.Payload)
}
