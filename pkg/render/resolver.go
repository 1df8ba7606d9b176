package render

import (
	"path"
	"strings"

	"github.com/foomo/docsite/content"
	"github.com/pkg/errors"
)

// ErrEscapesSite relative references must stay inside the site
var ErrEscapesSite = errors.New("reference escapes the site root")

// Resolve maps a raw href found on the page at pagePath onto a link. Empty,
// absolute, fragment only, mailto and protocol links come back untouched as
// external links. Everything else is resolved against the directory of the
// referencing page.
func Resolve(pagePath, href string) (content.Link, error) {
	if isPassThrough(href) {
		return content.Link{Target: href}, nil
	}

	raw := href
	var anchor string
	if i := strings.Index(href, "#"); i >= 0 {
		href, anchor = href[:i], href[i+1:]
	}

	link := content.Link{Anchor: anchor}
	lastSegment := href[strings.LastIndex(href, content.PathSeparator)+1:]
	switch {
	case strings.HasSuffix(href, content.MarkdownExt):
		href = strings.TrimSuffix(href, content.MarkdownExt)
		link.Kind, link.Param = content.LinkPage, content.ParamPagePath
	case !strings.Contains(lastSegment, "."):
		link.Kind, link.Param = content.LinkPage, content.ParamPagePath
	default:
		link.Kind, link.Param = content.LinkStatic, content.ParamFilename
	}

	basePath := ""
	if i := strings.LastIndex(pagePath, content.PathSeparator); i >= 0 {
		basePath = pagePath[:i]
	}
	target := path.Join(basePath, strings.TrimRight(href, content.PathSeparator))
	switch {
	case target == ".." || strings.HasPrefix(target, "../"):
		return content.Link{Target: raw}, errors.Wrapf(ErrEscapesSite, "%q on page %q", href, pagePath)
	case target == ".":
		target = ""
	}
	if link.Kind == content.LinkStatic && target == "" {
		return content.Link{Target: raw}, errors.Errorf("empty static reference on page %q", pagePath)
	}
	link.Target = target
	return link, nil
}

func isPassThrough(href string) bool {
	return href == "" ||
		strings.Contains(href, "://") ||
		strings.HasPrefix(href, "/") ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "mailto:")
}
