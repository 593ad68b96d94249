// Package parse turns loosely-structured model replies into typed results:
// chapter/timestamp lines and numbered idea lists.
package parse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/contentkit/openai-gateway/internal/models"
)

const (
	maxChapters = 10
	maxIdeas    = 8
)

var (
	chapterLine   = regexp.MustCompile(`^\[(\d{2}:\d{2}:\d{2})\]\s+(.+)$`)
	bracketPrefix = regexp.MustCompile(`^\[[^\]]+\]\s+`)
	ideaNumbering = regexp.MustCompile(`^\d+\.\s+`)
)

// Chapters extracts "[HH:MM:SS] Title" lines in encounter order. When no
// line matches, every non-empty line becomes a chapter title with synthetic
// timestamps at 5-second multiples of the line index.
// TODO: the 5-second fallback spacing does not scale with transcript length;
// kept as-is for compatibility with existing consumers.
func Chapters(content string) []models.Chapter {
	var chapters []models.Chapter

	for _, line := range nonEmptyLines(content) {
		if m := chapterLine.FindStringSubmatch(line); m != nil {
			chapters = append(chapters, models.Chapter{
				Timestamp: m[1],
				Title:     strings.TrimSpace(m[2]),
			})
		}
	}

	if len(chapters) == 0 {
		for i, line := range nonEmptyLines(content) {
			chapters = append(chapters, models.Chapter{
				Timestamp: syntheticTimestamp(i * 5),
				Title:     bracketPrefix.ReplaceAllString(line, ""),
			})
		}
	}

	if len(chapters) > maxChapters {
		chapters = chapters[:maxChapters]
	}
	return chapters
}

// Ideas extracts one idea per non-empty line, stripping an optional
// "<digits>. " numbering prefix. An empty parse yields an empty list.
func Ideas(content string) []string {
	var ideas []string

	for _, line := range nonEmptyLines(content) {
		idea := strings.TrimSpace(ideaNumbering.ReplaceAllString(line, ""))
		if idea != "" {
			ideas = append(ideas, idea)
		}
	}

	if len(ideas) > maxIdeas {
		ideas = ideas[:maxIdeas]
	}
	return ideas
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func syntheticTimestamp(seconds int) string {
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
