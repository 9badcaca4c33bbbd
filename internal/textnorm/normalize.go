// Package textnorm cleans raw model output and extracts citations from it.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	thinkBlockRE = regexp.MustCompile(`(?s)<think>.*?</think>`)
	tagRE        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw model output for comparison:
//   - removes <think>…</think> reasoning blocks
//   - removes any remaining markup-like tags
//   - collapses whitespace runs to a single space
//   - trims leading/trailing whitespace
//
// Clean is idempotent and treats empty input as the empty string.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	text = thinkBlockRE.ReplaceAllString(text, "")
	text = tagRE.ReplaceAllString(text, "")
	text = whitespaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
