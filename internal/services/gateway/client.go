// Package gateway is the single authenticated egress point to the OpenAI
// API. Every outbound call goes through Send or SendMultipart, which handle
// authentication, retries with backoff, error classification, and the
// deterministic mock mode used by tests.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/contentkit/openai-gateway/internal/config"
	"github.com/contentkit/openai-gateway/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

const maxAttempts = 3

// retryDelays are the fixed backoff delays applied before attempts 2 and 3.
var retryDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// retryableStatuses are the upstream statuses worth another attempt.
var retryableStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// statusClassification is the static upstream-status to domain-error table.
type statusClassification struct {
	code    models.ErrorCode
	message string
}

var statusClassifications = map[int]statusClassification{
	http.StatusUnauthorized: {
		code:    models.ErrCodeInvalidAPIKey,
		message: "Invalid OpenAI API key. Please check your configuration.",
	},
	http.StatusTooManyRequests: {
		code:    models.ErrCodeUpstreamRateLimit,
		message: "OpenAI rate limit exceeded. Please try again later.",
	},
	http.StatusInternalServerError: {
		code:    models.ErrCodeServiceUnavailable,
		message: "OpenAI service temporarily unavailable. Please try again.",
	},
	http.StatusBadGateway: {
		code:    models.ErrCodeServiceUnavailable,
		message: "OpenAI service temporarily unavailable. Please try again.",
	},
	http.StatusServiceUnavailable: {
		code:    models.ErrCodeServiceUnavailable,
		message: "OpenAI service temporarily unavailable. Please try again.",
	},
	http.StatusGatewayTimeout: {
		code:    models.ErrCodeServiceUnavailable,
		message: "OpenAI service temporarily unavailable. Please try again.",
	},
}

var allowedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// ClientConfig holds transport tuning for the gateway client.
type ClientConfig struct {
	BaseURL             string
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
}

// DefaultClientConfig returns pooled-transport defaults.
func DefaultClientConfig(baseURL string) *ClientConfig {
	return &ClientConfig{
		BaseURL:             baseURL,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		KeepAlive:           30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// Client is the outbound gateway. It holds no per-request state; every call
// reads the credential and timeout once from the settings snapshot and uses
// them for its entire retry sequence.
type Client struct {
	baseURL    string
	httpClient *http.Client
	settings   *config.Settings

	// sleep is injectable so tests can observe backoff without waiting.
	sleep func(time.Duration)
}

// NewClient creates a gateway client with default transport settings.
func NewClient(baseURL string, settings *config.Settings) *Client {
	return NewClientWithConfig(DefaultClientConfig(baseURL), settings)
}

// NewClientWithConfig creates a gateway client with custom transport tuning.
func NewClientWithConfig(cfg *ClientConfig, settings *config.Settings) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Transport: transport},
		settings:   settings,
		sleep:      time.Sleep,
	}
}

// mockEnabled reports whether canned responses should replace network calls.
func (c *Client) mockEnabled(snap config.Snapshot) bool {
	return snap.MockMode || os.Getenv("OPENAI_MOCK") != ""
}

// Send performs an authenticated call against endpoint and decodes the JSON
// response body. GET payloads become query parameters, POST/PUT/PATCH become
// a JSON body, DELETE sends no body. Transient failures are retried up to
// three attempts with 1s/2s backoff; everything else fails immediately with
// a classified *models.GatewayError.
func (c *Client) Send(ctx context.Context, endpoint, method string, payload map[string]any) (map[string]any, error) {
	method = strings.ToUpper(method)
	if !allowedMethods[method] {
		return nil, models.NewValidationError(map[string]string{
			"method": "Unsupported HTTP method: " + method,
		})
	}

	snap := c.settings.Snapshot()

	if snap.APIKey == "" && !c.mockEnabled(snap) {
		return nil, models.NewMissingCredentialsError()
	}

	if c.mockEnabled(snap) {
		return mockResponse(endpoint, payload), nil
	}

	return c.withRetry(ctx, snap, endpoint, func(attemptCtx context.Context) (*http.Response, error) {
		return c.executeJSON(attemptCtx, snap, endpoint, method, payload)
	})
}

// withRetry drives the attempt loop shared by JSON and multipart calls.
// build must construct and execute a fresh request each attempt.
func (c *Client) withRetry(ctx context.Context, snap config.Snapshot, endpoint string, build func(context.Context) (*http.Response, error)) (map[string]any, error) {
	var lastErr *models.GatewayError

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := retryDelays[attempt-1]
			fiberlog.Warnf("OpenAI request failed, retrying in %v (attempt %d, endpoint %s): %v",
				delay, attempt+1, endpoint, lastErr)
			c.sleep(delay)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, snap.Timeout)
		resp, err := build(attemptCtx)
		if err != nil {
			cancel()
			// Transport-level failure: connect errors and timeouts are
			// transient, so keep trying.
			lastErr = models.NewUpstreamError(models.ErrCodeUpstream, "OpenAI request failed", 0)
			lastErr.Cause = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		closeBody(resp)
		cancel()
		if readErr != nil {
			lastErr = models.NewUpstreamError(models.ErrCodeUpstream, "Failed to read OpenAI response", resp.StatusCode)
			lastErr.Cause = readErr
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			decoded := map[string]any{}
			if err := json.Unmarshal(body, &decoded); err != nil {
				// A malformed 2xx body is a protocol violation, not a
				// transient fault. Never retried.
				return nil, models.NewUpstreamError(models.ErrCodeUpstream,
					"Invalid JSON response from OpenAI API", resp.StatusCode)
			}
			fiberlog.Debugf("OpenAI API success (endpoint %s, status %d)", endpoint, resp.StatusCode)
			return decoded, nil
		}

		lastErr = classify(resp.StatusCode, body)
		if !retryableStatuses[resp.StatusCode] {
			fiberlog.Errorf("OpenAI API error (endpoint %s, status %d, code %s): %s",
				endpoint, resp.StatusCode, lastErr.Code, lastErr.Message)
			return nil, lastErr
		}
	}

	fiberlog.Errorf("OpenAI request exhausted retries (endpoint %s): %v", endpoint, lastErr)
	return nil, lastErr
}

func (c *Client) executeJSON(ctx context.Context, snap config.Snapshot, endpoint, method string, payload map[string]any) (*http.Response, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	var body io.Reader
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshaling request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	if method == http.MethodGet && len(payload) > 0 {
		q := req.URL.Query()
		for k, v := range payload {
			q.Set(k, fmt.Sprint(v))
		}
		req.URL.RawQuery = q.Encode()
	}

	req.Header.Set("Authorization", "Bearer "+snap.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// classify maps an upstream failure status and body to a domain error. The
// static status table wins; otherwise an error object in the body is passed
// through verbatim; otherwise the transport-level description stands.
func classify(status int, body []byte) *models.GatewayError {
	message := fmt.Sprintf("HTTP %d response from OpenAI API", status)
	code := models.ErrCodeUpstream

	var parsed struct {
		Error *struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		if parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		if parsed.Error.Code != "" {
			code = models.ErrorCode(parsed.Error.Code)
		}
	}

	if cls, ok := statusClassifications[status]; ok {
		return models.NewUpstreamError(cls.code, cls.message, status)
	}

	return models.NewUpstreamError(code, message, status)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		fiberlog.Errorf("Error closing response body: %v", err)
	}
}
