package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var htmlPolicy = bluemonday.StrictPolicy()

// SanitizeString trims whitespace, strips null bytes and caps length.
// Applied to every user-supplied identifier before it reaches a query.
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	if len(input) > 1000 {
		input = input[:1000]
	}

	return input
}

// SanitizeHTML removes all HTML tags. Usernames end up embedded in stored
// notification messages, so they are stripped before persisting.
func SanitizeHTML(input string) string {
	return htmlPolicy.Sanitize(input)
}
