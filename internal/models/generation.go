package models

// Chapter is a single parsed chapter marker.
type Chapter struct {
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
}

// TextResult is the outcome of a title/description/tags generation.
type TextResult struct {
	Result string `json:"result"`
	Type   string `json:"type"`
	Model  string `json:"model"`
	Usage  *int   `json:"usage,omitempty"`
}

// ChaptersResult is the outcome of a timestamps generation.
type ChaptersResult struct {
	Chapters []Chapter `json:"chapters"`
	Model    string    `json:"model"`
	Usage    *int      `json:"usage,omitempty"`
}

// IdeasResult is the outcome of a shorts-ideas generation.
type IdeasResult struct {
	Ideas    []string `json:"ideas"`
	Platform string   `json:"platform"`
	Model    string   `json:"model"`
	Usage    *int     `json:"usage,omitempty"`
}

// GenerateRequest is the inbound body for the text generation endpoints.
type GenerateRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

// TimestampsRequest is the inbound body for chapter generation.
type TimestampsRequest struct {
	Transcript string `json:"transcript"`
}

// EmbeddingsRequest is the inbound body for the embeddings endpoint. Input
// may be a string or a list of strings; it is forwarded as-is.
type EmbeddingsRequest struct {
	Input any    `json:"input"`
	Text  any    `json:"text"`
	Model string `json:"model"`
}

// ImageOptions carries optional image generation parameters.
type ImageOptions struct {
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

// ImagesRequest is the inbound body for image generation.
type ImagesRequest struct {
	Prompt  string       `json:"prompt"`
	Options ImageOptions `json:"options"`
}

// ModerationRequest is the inbound body for moderation.
type ModerationRequest struct {
	Input any `json:"input"`
	Text  any `json:"text"`
}

// RawRequest is the generic passthrough escape hatch.
type RawRequest struct {
	Endpoint string         `json:"endpoint"`
	Method   string         `json:"method"`
	Payload  map[string]any `json:"payload"`
}
