// Package content contains data structures that describe a documentation site
package content

const (
	// Indent for json indentation
	Indent string = "  "
	// PathSeparator separator for paths in URLs and page paths
	PathSeparator = "/"
	// IndexName is the page name that represents its parent directory
	IndexName = "index"
	// MarkdownExt extension of markdown source pages
	MarkdownExt = ".md"
	// DefaultChangeFreq is used for sitemap entries without an explicit change frequency
	DefaultChangeFreq = "monthly"
)
