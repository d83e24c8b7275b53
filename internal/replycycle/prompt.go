package replycycle

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BuildPrompt removes every occurrence of the trigger keyword from a comment.
// Both sides are NFC-normalized first so composed and decomposed forms match.
// When nothing but the keyword was written the trimmed comment is used as is.
func BuildPrompt(text, keyword string) string {
	text = norm.NFC.String(text)
	keyword = norm.NFC.String(keyword)
	if keyword == "" {
		return strings.TrimSpace(text)
	}
	stripped := strings.TrimSpace(strings.ReplaceAll(text, keyword, ""))
	if stripped == "" {
		return strings.TrimSpace(text)
	}
	return stripped
}
