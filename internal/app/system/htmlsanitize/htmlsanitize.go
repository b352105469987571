// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans user-supplied text before it is stored.
//
// PlainText is for chat, notes and feedback: every tag is removed and the
// result is stored as raw text. Clients escape it on display.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup and trims surrounding whitespace. Entities
// the policy escapes on output are decoded again, so "&", "'" and a bare
// "<" survive as typed and length limits count what the user wrote.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
