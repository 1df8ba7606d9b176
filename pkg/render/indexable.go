package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// Indexable plain text of rendered content for the search index
func Indexable(rendered []byte) string {
	text := html.UnescapeString(string(strictPolicy.SanitizeBytes(rendered)))
	return strings.Join(strings.Fields(text), " ")
}
