package mail

import (
	"html"
	"regexp"
	"strings"
)

var (
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</tr>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// StripTags derives the plain-text alternative of an HTML body: block
// boundaries become newlines, remaining markup is dropped and entities
// are decoded.
func StripTags(htmlBody string) string {
	text := breakPattern.ReplaceAllString(htmlBody, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = blankRuns.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
