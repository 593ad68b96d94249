package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSettings(t *testing.T, apiKey string) *config.Settings {
	t.Helper()

	settings := config.NewSettings(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, settings.Load())

	if apiKey != "" {
		update := config.SettingsUpdate{APIKey: &apiKey}
		settings.Apply(update)
	}
	return settings
}

// newTestClient returns a client pointed at baseURL with backoff sleeps
// recorded instead of slept.
func newTestClient(baseURL string, settings *config.Settings) (*Client, *[]time.Duration) {
	client := NewClient(baseURL, settings)

	var sleeps []time.Duration
	client.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return client, &sleeps
}

func TestSendRetriesTransientFailures(t *testing.T) {
	statuses := []int{http.StatusServiceUnavailable, http.StatusServiceUnavailable, http.StatusOK}
	var attempts int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := statuses[attempts]
		attempts++
		w.WriteHeader(status)
		if status == http.StatusOK {
			_ = json.NewEncoder(w).Encode(map[string]any{"output_text": "ok"})
		}
	}))
	defer srv.Close()

	client, sleeps := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	resp, err := client.Send(context.Background(), "/responses", http.MethodPost, map[string]any{"input": "hi"})

	require.NoError(t, err)
	assert.Equal(t, "ok", resp["output_text"])
	assert.Equal(t, 3, attempts)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
}

func TestSendExhaustsRetries(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, sleeps := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/responses", http.MethodPost, nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeServiceUnavailable, ge.Code)
	assert.Equal(t, http.StatusServiceUnavailable, ge.UpstreamStatus)
	assert.Equal(t, 3, attempts)
	assert.Len(t, *sleeps, 2)
}

func TestSendDoesNotRetryAuthFailure(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad key", "code": "invalid_api_key"},
		})
	}))
	defer srv.Close()

	client, sleeps := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/responses", http.MethodPost, nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeInvalidAPIKey, ge.Code)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, *sleeps)
}

func TestSendPassesThroughUnmappedUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Unknown model: gpt-9", "code": "model_not_found"},
		})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/responses", http.MethodPost, nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrorCode("model_not_found"), ge.Code)
	assert.Equal(t, "Unknown model: gpt-9", ge.Message)
	assert.Equal(t, http.StatusBadRequest, ge.UpstreamStatus)
}

func TestSendInvalidJSONSuccessIsFatal(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/responses", http.MethodPost, nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeUpstream, ge.Code)
	assert.Equal(t, "Invalid JSON response from OpenAI API", ge.Message)
	assert.Equal(t, 1, attempts)
}

func TestSendMissingCredentials(t *testing.T) {
	client, _ := newTestClient("http://127.0.0.1:0", newTestSettings(t, ""))

	_, err := client.Send(context.Background(), "/responses", http.MethodPost, nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeMissingCredentials, ge.Code)
}

func TestSendRejectsUnsupportedMethod(t *testing.T) {
	client, _ := newTestClient("http://127.0.0.1:0", newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/responses", "TRACE", nil)

	ge, ok := models.AsGatewayError(err)
	require.True(t, ok)
	assert.Equal(t, models.ErrCodeValidation, ge.Code)
}

func TestSendGETPayloadBecomesQueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("limit")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list"})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/files", http.MethodGet, map[string]any{"limit": 5})

	require.NoError(t, err)
	assert.Equal(t, "5", gotQuery)
}

func TestSendAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	_, err := client.Send(context.Background(), "/models", http.MethodGet, nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test-key-0123456789", gotAuth)
}

func TestMockModeNeedsNoCredentialsOrNetwork(t *testing.T) {
	settings := newTestSettings(t, "")
	mock := true
	settings.Apply(config.SettingsUpdate{MockMode: &mock})

	// Unroutable base URL proves no network call happens.
	client, _ := newTestClient("http://127.0.0.1:0", settings)

	resp, err := client.Send(context.Background(), "/responses", http.MethodPost, map[string]any{"model": "gpt-4o-mini"})

	require.NoError(t, err)
	assert.Equal(t, "resp_mock_1", resp["id"])
	assert.Equal(t, "gpt-4o-mini", resp["model"])

	usage, ok := resp["usage"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5, usage["total_tokens"])
}

func TestMockModeIsDeterministic(t *testing.T) {
	settings := newTestSettings(t, "")
	mock := true
	settings.Apply(config.SettingsUpdate{MockMode: &mock})
	client, _ := newTestClient("http://127.0.0.1:0", settings)

	first, err := client.Send(context.Background(), "/embeddings", http.MethodPost, nil)
	require.NoError(t, err)
	second, err := client.Send(context.Background(), "/embeddings", http.MethodPost, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSendMultipartRebuildsBodyAcrossRetries(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		content, err := io.ReadAll(f)
		require.NoError(t, err)
		bodies = append(bodies, string(content))

		if len(bodies) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "file_1"})
	}))
	defer srv.Close()

	client, _ := newTestClient(srv.URL, newTestSettings(t, "sk-test-key-0123456789"))

	part := Part{FieldName: "file", FileName: "audio.mp3", Content: []byte("audio-bytes")}
	resp, err := client.SendMultipart(context.Background(), "/audio/transcriptions", part, map[string]string{"model": "gpt-4o-transcribe"})

	require.NoError(t, err)
	assert.Equal(t, "file_1", resp["id"])
	assert.Equal(t, []string{"audio-bytes", "audio-bytes"}, bodies)
}

func TestRawRejectsAbsoluteURLs(t *testing.T) {
	client, _ := newTestClient("http://127.0.0.1:0", newTestSettings(t, "sk-test-key-0123456789"))

	for _, endpoint := range []string{"", "models", "https://evil.example/steal", "/v1/http-thing"} {
		_, err := client.Raw(context.Background(), endpoint, http.MethodGet, nil)

		ge, ok := models.AsGatewayError(err)
		require.True(t, ok, "endpoint %q should be rejected", endpoint)
		assert.Equal(t, models.ErrCodeValidation, ge.Code)
	}
}
