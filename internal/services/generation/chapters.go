package generation

import (
	"context"

	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/parse"
	"github.com/contentkit/openai-gateway/internal/services/prompt"
	"github.com/contentkit/openai-gateway/internal/validation"
)

const (
	minTranscriptLength = 50
	maxTranscriptLength = 10000
)

// GenerateTimestamps produces chapter markers for a video transcript.
func (s *Service) GenerateTimestamps(ctx context.Context, transcript string) (*models.ChaptersResult, error) {
	err := validation.New().
		Required(transcript, "transcript").
		MinLength(transcript, minTranscriptLength, "transcript").
		MaxLength(transcript, maxTranscriptLength, "transcript").
		Err()
	if err != nil {
		return nil, err
	}

	text, usage, model, err := s.complete(ctx, prompt.Chapters(transcript))
	if err != nil {
		return nil, err
	}

	return &models.ChaptersResult{
		Chapters: parse.Chapters(text),
		Model:    model,
		Usage:    usage,
	}, nil
}
