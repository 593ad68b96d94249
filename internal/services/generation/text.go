package generation

import (
	"context"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/prompt"
	"github.com/contentkit/openai-gateway/internal/validation"
)

const (
	minContentLength = 10
	maxContentLength = 5000
)

func validateContent(content string) error {
	return validation.New().
		Required(content, "content").
		MinLength(content, minContentLength, "content").
		MaxLength(content, maxContentLength, "content").
		Err()
}

// GenerateTitle produces an SEO-friendly title for the given content.
func (s *Service) GenerateTitle(ctx context.Context, content string) (*models.TextResult, error) {
	return s.generateText(ctx, content, "title", prompt.Title)
}

// GenerateDescription produces a meta description for the given content.
func (s *Service) GenerateDescription(ctx context.Context, content string) (*models.TextResult, error) {
	return s.generateText(ctx, content, "description", prompt.Description)
}

// GenerateTags produces comma-separated tags for the given content.
func (s *Service) GenerateTags(ctx context.Context, content string) (*models.TextResult, error) {
	return s.generateText(ctx, content, "tags", prompt.Tags)
}

func (s *Service) generateText(ctx context.Context, content, kind string, build func(string) []prompt.Message) (*models.TextResult, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	text, usage, model, err := s.complete(ctx, build(content))
	if err != nil {
		return nil, err
	}

	return &models.TextResult{
		Result: text,
		Type:   kind,
		Model:  model,
		Usage:  usage,
	}, nil
}
