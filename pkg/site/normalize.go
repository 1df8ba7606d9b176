package site

import (
	"path"
	"strings"

	"github.com/foomo/docsite/content"
)

// Normalize maps a page path relative to the site ("baz/index", "foo") onto
// the URL of its parent node and its own URL pattern. Index pages stand for
// their directory, so both values are equal for them.
func Normalize(cfg Config, pagePath string) (parent, pattern string) {
	root := cfg.RootPath()
	base := strings.TrimSuffix(root, content.PathSeparator)

	p := strings.TrimPrefix(path.Clean(content.PathSeparator+pagePath), content.PathSeparator)
	switch {
	case p == "" || p == content.IndexName:
		return root, root
	case strings.HasSuffix(p, content.PathSeparator+content.IndexName):
		dir := base + content.PathSeparator + strings.TrimSuffix(p, content.PathSeparator+content.IndexName)
		return dir, dir
	}

	pattern = base + content.PathSeparator + p
	dir, _ := path.Split(p)
	if dir = strings.TrimSuffix(dir, content.PathSeparator); dir == "" {
		return root, pattern
	}
	return base + content.PathSeparator + dir, pattern
}
