package render

import (
	"bytes"
	"html"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/foomo/docsite/content"
)

const (
	placeholderScheme = "docref:"
	// written instead of the scheme wherever the source itself contains it
	defusedHTMLScheme = "docref&#58;"
	defusedURLScheme  = "docref%3A"
)

// placeholders only match inside href and src attributes as the renderer
// writes them. Look-alikes from the source are defused while rendering.
var placeholderPattern = regexp.MustCompile(`(\s)(href|src)="docref:(page|static):([^"#]*)(?:#([^"]*))?"`)

// Expand replaces the placeholders written by Render with URLs. Targets
// leaving the site root are never expanded.
func Expand(rendered []byte, urls URLBuilder) []byte {
	return placeholderPattern.ReplaceAllFunc(rendered, func(match []byte) []byte {
		groups := placeholderPattern.FindSubmatch(match)
		link := content.Link{
			Kind:   content.LinkKind(groups[3]),
			Target: unescape(groups[4]),
			Anchor: unescape(groups[5]),
		}
		if !isSiteTarget(link.Target) {
			return match
		}
		if link.Kind == content.LinkPage {
			link.Param = content.ParamPagePath
		} else {
			link.Param = content.ParamFilename
		}
		return []byte(string(groups[1]) + string(groups[2]) + `="` + html.EscapeString(urls.URL(link)) + `"`)
	})
}

// isSiteTarget relative, clean and inside the site, "" is the site root
func isSiteTarget(target string) bool {
	if target == "" {
		return true
	}
	return !strings.HasPrefix(target, content.PathSeparator) &&
		path.Clean(target) == target &&
		target != ".." && !strings.HasPrefix(target, "../")
}

// defuse replaces every occurrence of the placeholder scheme in b
func defuse(b []byte, replacement string) []byte {
	if !bytes.Contains(b, []byte(placeholderScheme)) {
		return b
	}
	return bytes.ReplaceAll(b, []byte(placeholderScheme), []byte(replacement))
}

func unescape(b []byte) string {
	s := html.UnescapeString(string(b))
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
