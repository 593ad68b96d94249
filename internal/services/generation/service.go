// Package generation implements the content generation workflows: titles,
// descriptions, tags, chapter timestamps, and short-form video ideas. Each
// workflow validates its input, builds a prompt, calls the outbound gateway,
// and normalizes the reply into a typed result.
package generation

import (
	"context"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"
	"github.com/contentkit/openai-gateway/internal/services/gateway"
	"github.com/contentkit/openai-gateway/internal/services/normalize"
	"github.com/contentkit/openai-gateway/internal/services/prompt"
)

// Service runs the generation workflows against the outbound gateway.
type Service struct {
	client   *gateway.Client
	settings *config.Settings
}

// NewService creates a generation service.
func NewService(client *gateway.Client, settings *config.Settings) *Service {
	return &Service{client: client, settings: settings}
}

// complete sends a prompt through the gateway and extracts the normalized
// text and token usage. Gateway failures are recorded on the settings store
// for dashboard display before being returned.
func (s *Service) complete(ctx context.Context, messages []prompt.Message) (string, *int, string, error) {
	snap := s.settings.Snapshot()

	payload := map[string]any{
		"model":             snap.Model,
		"input":             messages,
		"temperature":       snap.Temperature,
		"max_output_tokens": snap.MaxOutputTokens,
	}

	resp, err := s.client.Responses(ctx, payload)
	if err != nil {
		s.settings.RecordError(models.SanitizeError(err).Message)
		return "", nil, snap.Model, err
	}

	text, err := normalize.Text(resp)
	if err != nil {
		s.settings.RecordError(models.SanitizeError(err).Message)
		return "", nil, snap.Model, err
	}

	return text, normalize.Usage(resp), snap.Model, nil
}
