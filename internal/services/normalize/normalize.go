// Package normalize collapses the provider's variable response shapes into
// one plain text value. Three shapes are known: a top-level output_text
// field, a list of output items carrying typed content blocks, and the
// legacy choices array. They are modeled as an explicit tagged union and
// matched exhaustively; anything else is a contract violation.
package normalize

import (
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"
)

type shape int

const (
	shapeNone shape = iota
	shapeDirect
	shapeBlocks
	shapeChoices
)

// detect classifies the response body, preferring the richer modern shapes
// over the legacy one.
func detect(body map[string]any) shape {
	if _, ok := body["output_text"].(string); ok {
		return shapeDirect
	}
	if _, ok := body["output"].([]any); ok {
		return shapeBlocks
	}
	if _, ok := body["choices"].([]any); ok {
		return shapeChoices
	}
	return shapeNone
}

// Text extracts the canonical text value from a decoded response body.
// Returns a NO_CONTENT error when no known shape matches; callers must treat
// that as fatal since retrying cannot fix a contract mismatch.
func Text(body map[string]any) (string, error) {
	switch detect(body) {
	case shapeDirect:
		return strings.TrimSpace(body["output_text"].(string)), nil

	case shapeBlocks:
		texts := blockTexts(body["output"].([]any))
		if len(texts) == 0 {
			return "", models.NewNoContentError()
		}
		return strings.TrimSpace(strings.Join(texts, "\n")), nil

	case shapeChoices:
		text, ok := firstChoiceText(body["choices"].([]any))
		if !ok {
			return "", models.NewNoContentError()
		}
		return strings.TrimSpace(text), nil

	default:
		return "", models.NewNoContentError()
	}
}

// blockTexts concatenates every textual content block in list order.
func blockTexts(output []any) []string {
	var texts []string
	for _, item := range output {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		content, ok := entry["content"].([]any)
		if !ok {
			continue
		}
		for _, block := range content {
			b, ok := block.(map[string]any)
			if !ok {
				continue
			}
			blockType, _ := b["type"].(string)
			if blockType != "output_text" && blockType != "text" {
				continue
			}
			if text, ok := b["text"].(string); ok {
				texts = append(texts, text)
			}
		}
	}
	return texts
}

func firstChoiceText(choices []any) (string, bool) {
	if len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := message["content"].(string)
	return text, ok
}

// Usage extracts the reported total token count, when present.
func Usage(body map[string]any) *int {
	usage, ok := body["usage"].(map[string]any)
	if !ok {
		return nil
	}

	switch v := usage["total_tokens"].(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	default:
		return nil
	}
}
