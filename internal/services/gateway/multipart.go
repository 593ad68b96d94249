package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"
)

// Part is a file attached to a multipart request. Content is held in memory
// so the body can be rebuilt on every retry attempt.
type Part struct {
	FieldName string
	FileName  string
	Content   []byte
}

// SendMultipart performs an authenticated multipart POST, used by file upload
// and audio transcription. It shares Send's credential check, retry budget,
// and status classification; only the body encoding differs.
func (c *Client) SendMultipart(ctx context.Context, endpoint string, part Part, fields map[string]string) (map[string]any, error) {
	snap := c.settings.Snapshot()

	if snap.APIKey == "" && !c.mockEnabled(snap) {
		return nil, models.NewMissingCredentialsError()
	}

	if c.mockEnabled(snap) {
		return mockMultipartResponse(endpoint, part.FileName), nil
	}

	return c.withRetry(ctx, snap, endpoint, func(attemptCtx context.Context) (*http.Response, error) {
		return c.executeMultipart(attemptCtx, snap, endpoint, part, fields)
	})
}

func (c *Client) executeMultipart(ctx context.Context, snap config.Snapshot, endpoint string, part Part, fields map[string]string) (*http.Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fieldName := part.FieldName
	if fieldName == "" {
		fieldName = "file"
	}

	fw, err := writer.CreateFormFile(fieldName, part.FileName)
	if err != nil {
		return nil, fmt.Errorf("error creating multipart file field: %w", err)
	}
	if _, err := fw.Write(part.Content); err != nil {
		return nil, fmt.Errorf("error writing multipart file content: %w", err)
	}

	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("error writing multipart field %s: %w", k, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error finalizing multipart body: %w", err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+snap.APIKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.httpClient.Do(req)
}
