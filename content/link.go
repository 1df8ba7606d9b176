package content

// LinkKind route kind of a resolved link
type LinkKind string

const (
	// LinkExternal links we do not touch
	LinkExternal LinkKind = ""
	// LinkPage links to another page of the site
	LinkPage LinkKind = "page"
	// LinkStatic links to a static asset of the site
	LinkStatic LinkKind = "static"
)

const (
	// ParamPagePath route parameter name for pages
	ParamPagePath = "page_path"
	// ParamFilename route parameter name for static assets
	ParamFilename = "filename"
)

// Link a resolved link target. For external links Target holds the raw
// href and Param is empty.
type Link struct {
	Kind   LinkKind
	Param  string
	Target string
	Anchor string
}

// IsExternal whether the link was left untouched
func (l Link) IsExternal() bool {
	return l.Kind == LinkExternal
}
