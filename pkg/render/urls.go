package render

import (
	"net/url"
	"strings"

	"github.com/foomo/docsite/content"
)

// URLBuilder turns resolved links into served URLs
type URLBuilder interface {
	URL(link content.Link) string
}

// SiteURLs builds URLs for a site mounted at RootPath. Static assets are
// served below RootPath/static unless StaticURL points somewhere else.
type SiteURLs struct {
	RootPath  string
	StaticURL string
}

// StaticDir route segment for static assets
const StaticDir = "static"

func (u SiteURLs) URL(link content.Link) string {
	switch link.Kind {
	case content.LinkPage:
		return u.PageURL(link.Target, link.Anchor)
	case content.LinkStatic:
		return u.StaticFileURL(link.Target)
	default:
		return link.Target
	}
}

func (u SiteURLs) PageURL(pagePath, anchor string) string {
	s := u.base()
	if pagePath != "" {
		s += content.PathSeparator + escapePath(pagePath)
	}
	if s == "" {
		s = content.PathSeparator
	}
	if anchor != "" {
		s += "#" + url.PathEscape(anchor)
	}
	return s
}

func (u SiteURLs) StaticFileURL(filename string) string {
	if u.StaticURL != "" {
		return strings.TrimSuffix(u.StaticURL, content.PathSeparator) + content.PathSeparator + escapePath(filename)
	}
	return u.base() + content.PathSeparator + StaticDir + content.PathSeparator + escapePath(filename)
}

func (u SiteURLs) base() string {
	return strings.TrimSuffix(u.RootPath, content.PathSeparator)
}

func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}
