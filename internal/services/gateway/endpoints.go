package gateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Responses calls the Responses API, the main text generation endpoint.
func (c *Client) Responses(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Send(ctx, "/responses", http.MethodPost, payload)
}

// Embeddings creates embeddings for the given payload.
func (c *Client) Embeddings(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Send(ctx, "/embeddings", http.MethodPost, payload)
}

// Images generates images from a prompt payload.
func (c *Client) Images(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Send(ctx, "/images/generations", http.MethodPost, payload)
}

// Moderations runs content moderation.
func (c *Client) Moderations(ctx context.Context, payload map[string]any) (map[string]any, error) {
	return c.Send(ctx, "/moderations", http.MethodPost, payload)
}

// Models lists the models available to the configured key.
func (c *Client) Models(ctx context.Context) (map[string]any, error) {
	return c.Send(ctx, "/models", http.MethodGet, nil)
}

// Files lists uploaded files.
func (c *Client) Files(ctx context.Context) (map[string]any, error) {
	return c.Send(ctx, "/files", http.MethodGet, nil)
}

// UploadFile uploads a file via multipart encoding.
func (c *Client) UploadFile(ctx context.Context, part Part, fields map[string]string) (map[string]any, error) {
	return c.SendMultipart(ctx, "/files", part, fields)
}

// Transcribe submits audio for transcription via multipart encoding.
func (c *Client) Transcribe(ctx context.Context, part Part, fields map[string]string) (map[string]any, error) {
	return c.SendMultipart(ctx, "/audio/transcriptions", part, fields)
}

// Raw forwards an arbitrary call to the upstream API. The endpoint must be a
// relative path; full URLs are rejected before any network attempt.
func (c *Client) Raw(ctx context.Context, endpoint, method string, payload map[string]any) (map[string]any, error) {
	fields := map[string]string{}
	if endpoint == "" || !strings.HasPrefix(endpoint, "/") {
		fields["endpoint"] = "Endpoint must start with \"/\""
	} else if strings.Contains(endpoint, "http") {
		fields["endpoint"] = "Full URLs are not allowed"
	}
	if len(fields) > 0 {
		return nil, models.NewValidationError(fields)
	}

	return c.Send(ctx, endpoint, method, payload)
}

// TestConnection issues a minimal Responses call to verify the configured
// key works. Any of the known response shapes counts as success.
func (c *Client) TestConnection(ctx context.Context) bool {
	snap := c.settings.Snapshot()

	resp, err := c.Responses(ctx, map[string]any{
		"model": snap.Model,
		"input": "Test",
	})
	if err != nil {
		fiberlog.Errorf("API connection test failed: %v", err)
		return false
	}

	if text, ok := resp["output_text"].(string); ok {
		return strings.TrimSpace(text) != ""
	}
	if output, ok := resp["output"].([]any); ok && len(output) > 0 {
		return true
	}
	choices, ok := resp["choices"].([]any)
	return ok && len(choices) > 0
}
