package genai

import (
	"regexp"
	"strings"
)

var (
	fencedArrayPattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\[.*\\])\\s*```")
	bareArrayPattern   = regexp.MustCompile(`(?s)\[.*\]`)
)

// ExtractJSONArray pulls a JSON array out of model output that may be
// wrapped in a markdown code fence or surrounded by prose. It returns ""
// when no array-shaped text is found.
func ExtractJSONArray(text string) string {
	if match := fencedArrayPattern.FindStringSubmatch(text); len(match) > 1 {
		return strings.TrimSpace(match[1])
	}
	return strings.TrimSpace(bareArrayPattern.FindString(text))
}
