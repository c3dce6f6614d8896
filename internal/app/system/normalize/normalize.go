// Package normalize canonicalizes user-supplied strings before they are
// stored or used as lookup keys.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Email lower-cases and trims an email so it can be used as the user key.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding space and collapses internal runs of whitespace.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PlainText removes any HTML markup and trims the result. Entities the
// sanitizer escapes are decoded again so "Tom & Jerry" is stored as typed.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// ProfileName is Name applied to PlainText.
func ProfileName(s string) string {
	return Name(PlainText(s))
}
