package generation

import (
	"context"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/parse"
	"github.com/contentkit/openai-gateway/internal/services/prompt"
	"github.com/contentkit/openai-gateway/internal/validation"
)

const (
	minShortsContentLength = 20
	maxShortsContentLength = 5000
)

// supportedPlatforms are the short-form platforms with dedicated prompts.
var supportedPlatforms = []string{"tiktok", "reels", "shorts"}

// GenerateShortsIdeas produces short-form video ideas for a platform.
func (s *Service) GenerateShortsIdeas(ctx context.Context, content, platform string) (*models.IdeasResult, error) {
	err := validation.New().
		Required(content, "content").
		MinLength(content, minShortsContentLength, "content").
		MaxLength(content, maxShortsContentLength, "content").
		Required(platform, "platform").
		InEnum(platform, supportedPlatforms, "platform").
		Err()
	if err != nil {
		return nil, err
	}

	text, usage, model, err := s.complete(ctx, prompt.Shorts(content, platform))
	if err != nil {
		return nil, err
	}

	return &models.IdeasResult{
		Ideas:    parse.Ideas(text),
		Platform: platform,
		Model:    model,
		Usage:    usage,
	}, nil
}
