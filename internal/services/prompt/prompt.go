// Package prompt builds the fixed role-tagged prompt templates used by the
// generation services. All free-form user content is sanitized before being
// embedded, bounding prompt-injection surface and token cost.
package prompt

import (
	"regexp"
	"strings"
)

// Message is one role-tagged entry of a prompt.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const maxContentLength = 2000

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Title builds the title generation prompt.
func Title(content string) []Message {
	return []Message{
		{
			Role: "system",
			Content: "You are an expert copywriter specializing in creating compelling, SEO-friendly titles. " +
				"Generate exactly ONE title (40-60 characters) that is catchy, clear, and optimized for search engines. " +
				"Do not include quotes or extra text, only the title.",
		},
		{
			Role:    "user",
			Content: "Create a title for this content: " + sanitize(content),
		},
	}
}

// Description builds the meta description prompt.
func Description(content string) []Message {
	return []Message{
		{
			Role: "system",
			Content: "You are an SEO expert specializing in meta descriptions. " +
				"Generate a compelling meta description (150-160 characters) that includes relevant keywords and entices clicks. " +
				"Do not include quotes or extra text, only the description.",
		},
		{
			Role:    "user",
			Content: "Create an SEO description for this content: " + sanitize(content),
		},
	}
}

// Tags builds the tag generation prompt.
func Tags(content string) []Message {
	return []Message{
		{
			Role: "system",
			Content: "You are a content strategist specializing in tag generation. " +
				"Generate 8-10 relevant, single-word or hyphenated tags for the content. " +
				"Return ONLY comma-separated tags without any other text.",
		},
		{
			Role:    "user",
			Content: "Generate tags for this content: " + sanitize(content),
		},
	}
}

// Chapters builds the chapter/timestamp breakdown prompt.
func Chapters(transcript string) []Message {
	return []Message{
		{
			Role: "system",
			Content: "You are a video editor specializing in creating chapter breakdowns from transcripts. " +
				"Analyze the provided transcript and generate 5-10 chapter timestamps and titles. " +
				"Format your response EXACTLY as: [00:00:00] Chapter Title\n[00:01:30] Next Chapter\n" +
				"Use format HH:MM:SS for timestamps. Only include the formatted chapters, no other text.",
		},
		{
			Role:    "user",
			Content: "Create chapters for this transcript: " + sanitize(transcript),
		},
	}
}

// Shorts builds the short-form video ideas prompt for a platform.
func Shorts(content, platform string) []Message {
	var platformInstructions string
	switch platform {
	case "tiktok":
		platformInstructions = "TikTok (15-60 seconds, trendy, engaging, viral-worthy)"
	case "reels":
		platformInstructions = "Instagram Reels (15-90 seconds, visually focused, music-friendly)"
	case "shorts":
		platformInstructions = "YouTube Shorts (15-60 seconds, educational or entertaining)"
	default:
		platformInstructions = "short-form video"
	}

	return []Message{
		{
			Role: "system",
			Content: "You are a social media content strategist specializing in short-form video ideas. " +
				"Generate 5-8 innovative, platform-optimized video ideas for " + platformInstructions + ". " +
				"Each idea should be 1-2 sentences describing the concept, hook, and key elements. " +
				"Return ONLY the numbered list of ideas, no extra text.",
		},
		{
			Role:    "user",
			Content: "Generate short-form video ideas for " + platform + " based on this content: " + sanitize(content),
		},
	}
}

// sanitize trims, collapses whitespace runs, and hard-truncates user content
// before it is embedded into a prompt.
func sanitize(input string) string {
	input = strings.TrimSpace(input)

	if len(input) > maxContentLength {
		input = input[:maxContentLength] + "..."
	}

	return whitespaceRuns.ReplaceAllString(input, " ")
}
