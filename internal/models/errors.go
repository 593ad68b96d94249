package models

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable symbolic code surfaced to API callers.
type ErrorCode string

const (
	// ErrCodeMissingCredentials means no API key is configured; never retried.
	ErrCodeMissingCredentials ErrorCode = "MISSING_CREDENTIALS"
	// ErrCodeValidation means caller input failed validation; carries a field map.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrCodeRateLimitExceeded means our own admission control rejected the request.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeInvalidAPIKey maps upstream HTTP 401.
	ErrCodeInvalidAPIKey ErrorCode = "INVALID_API_KEY"
	// ErrCodeUpstreamRateLimit maps upstream HTTP 429.
	ErrCodeUpstreamRateLimit ErrorCode = "RATE_LIMIT"
	// ErrCodeServiceUnavailable maps upstream HTTP 500/502/503/504.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeNoContent means no known response shape matched; a contract
	// violation, never retried.
	ErrCodeNoContent ErrorCode = "NO_CONTENT"
	// ErrCodeUpstream is the generic upstream failure code, used when the
	// provider reports no more specific code of its own.
	ErrCodeUpstream ErrorCode = "OPENAI_ERROR"

	// Inbound routing codes.
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeInternal is the generic substitute for anything unanticipated.
	ErrCodeInternal ErrorCode = "SERVER_ERROR"
)

// GatewayError is the single structured error type crossing service
// boundaries. Code is stable; Message is human readable. FieldErrors is only
// set for validation failures and RetryAfter only for admission rejections.
type GatewayError struct {
	Code           ErrorCode         `json:"code"`
	Message        string            `json:"message"`
	UpstreamStatus int               `json:"-"`
	FieldErrors    map[string]string `json:"-"`
	RetryAfter     int               `json:"-"`
	Cause          error             `json:"-"`
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the inbound HTTP status for this error. Upstream and
// credential failures all surface as 503 to the facade's own callers,
// matching the documented endpoint contract.
func (e *GatewayError) StatusCode() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrCodeMissingCredentials, ErrCodeInvalidAPIKey, ErrCodeUpstreamRateLimit,
		ErrCodeServiceUnavailable, ErrCodeNoContent, ErrCodeUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// NewMissingCredentialsError reports an unconfigured API key.
func NewMissingCredentialsError() *GatewayError {
	return &GatewayError{
		Code:    ErrCodeMissingCredentials,
		Message: "OpenAI API key is not configured",
	}
}

// NewValidationError reports caller input violations as a field->message map.
func NewValidationError(fields map[string]string) *GatewayError {
	return &GatewayError{
		Code:        ErrCodeValidation,
		Message:     "Validation failed",
		FieldErrors: fields,
	}
}

// NewRateLimitExceededError reports an admission control rejection.
func NewRateLimitExceededError(limit, retryAfter int) *GatewayError {
	return &GatewayError{
		Code:       ErrCodeRateLimitExceeded,
		Message:    fmt.Sprintf("Rate limit exceeded: %d requests per minute", limit),
		RetryAfter: retryAfter,
	}
}

// NewNoContentError reports a response in none of the known shapes.
func NewNoContentError() *GatewayError {
	return &GatewayError{
		Code:    ErrCodeNoContent,
		Message: "No text content in OpenAI response",
	}
}

// NewUpstreamError wraps an upstream failure with a symbolic code.
func NewUpstreamError(code ErrorCode, message string, upstreamStatus int) *GatewayError {
	return &GatewayError{
		Code:           code,
		Message:        message,
		UpstreamStatus: upstreamStatus,
	}
}

// NewInternalError hides the cause behind a generic message.
func NewInternalError(cause error) *GatewayError {
	return &GatewayError{
		Code:    ErrCodeInternal,
		Message: "Internal server error",
		Cause:   cause,
	}
}

// AsGatewayError unwraps err into a *GatewayError when possible.
func AsGatewayError(err error) (*GatewayError, bool) {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// SanitizeError guarantees callers only ever see a structured error with a
// stable code. Unknown errors are replaced wholesale so no raw exception text
// leaks through the inbound API.
func SanitizeError(err error) *GatewayError {
	if ge, ok := AsGatewayError(err); ok {
		return ge
	}
	return NewInternalError(err)
}
