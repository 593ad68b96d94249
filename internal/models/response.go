package models

// APIResponse is the envelope every inbound endpoint returns.
type APIResponse struct {
	Success bool           `json:"success"`
	Data    any            `json:"data"`
	Error   *APIError      `json:"error"`
	Meta    map[string]any `json:"meta"`
}

// APIError is the caller-facing error object inside the envelope.
type APIError struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code"`
}

// SuccessResponse builds a success envelope.
func SuccessResponse(data any, meta map[string]any) APIResponse {
	if meta == nil {
		meta = map[string]any{}
	}
	return APIResponse{Success: true, Data: data, Error: nil, Meta: meta}
}

// ErrorResponse builds a failure envelope.
func ErrorResponse(message string, code ErrorCode, data any, meta map[string]any) APIResponse {
	if meta == nil {
		meta = map[string]any{}
	}
	return APIResponse{
		Success: false,
		Data:    data,
		Error:   &APIError{Message: message, Code: code},
		Meta:    meta,
	}
}
