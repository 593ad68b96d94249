package gateway

import "strings"

const mockText = "This is a mocked response for testing."

// mockResponse returns a fixed, deterministic payload shaped like the real
// endpoint's response. No network call is made; same field names, fixed ids
// and token usage, so parsers and services are testable without credentials.
func mockResponse(endpoint string, payload map[string]any) map[string]any {
	path := "/" + strings.TrimLeft(endpoint, "/")

	model := "mock-model"
	if m, ok := payload["model"].(string); ok && m != "" {
		model = m
	}

	switch {
	case strings.HasPrefix(path, "/responses"):
		return map[string]any{
			"id":          "resp_mock_1",
			"model":       model,
			"output_text": mockText,
			"output": []any{
				map[string]any{
					"id":   "msg_mock_1",
					"type": "message",
					"content": []any{
						map[string]any{"type": "output_text", "text": mockText},
					},
				},
			},
			"usage": map[string]any{
				"input_tokens":  1,
				"output_tokens": 4,
				"total_tokens":  5,
			},
		}
	case strings.HasPrefix(path, "/embeddings"):
		vector := make([]any, 8)
		for i := range vector {
			vector[i] = 0.123456
		}
		return map[string]any{
			"object": "list",
			"data": []any{
				map[string]any{"object": "embedding", "embedding": vector, "index": 0},
			},
			"model": model,
		}
	case strings.HasPrefix(path, "/models"):
		return map[string]any{
			"data": []any{
				map[string]any{"id": "mock-model-1", "object": "model"},
			},
		}
	case strings.HasPrefix(path, "/images"):
		return map[string]any{
			"created": 0,
			"data": []any{
				map[string]any{"b64_json": "bW9jay1pbWFnZS1ieXRlcw=="},
			},
		}
	case strings.HasPrefix(path, "/audio/transcriptions"):
		return map[string]any{
			"id":   "tr_mock_1",
			"text": "This is a mocked transcription result.",
		}
	case strings.HasPrefix(path, "/moderations"):
		return map[string]any{
			"id": "mod_mock_1",
			"results": []any{
				map[string]any{"flagged": false},
			},
		}
	case strings.HasPrefix(path, "/files"):
		return map[string]any{
			"data": []any{
				map[string]any{"id": "file_mock_1", "filename": "mock.txt"},
			},
		}
	default:
		return map[string]any{"id": "mock_1", "object": "mock"}
	}
}

// mockMultipartResponse covers the upload-style endpoints.
func mockMultipartResponse(endpoint, filename string) map[string]any {
	path := "/" + strings.TrimLeft(endpoint, "/")

	if strings.HasPrefix(path, "/audio/transcriptions") {
		return map[string]any{
			"id":   "tr_mock_1",
			"text": "This is a mocked transcription result.",
		}
	}

	return map[string]any{"id": "file_mock_1", "filename": filename}
}
