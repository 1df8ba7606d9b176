package content

import (
	"time"
)

type (
	// Metadata of a single page. It is produced once per source page during
	// the build and never modified afterwards.
	Metadata struct {
		Title      string         `json:"title"`
		Modified   time.Time      `json:"modified"`
		Template   string         `json:"template,omitempty"`
		ChangeFreq string         `json:"changefreq,omitempty"`
		Response   *Response      `json:"response,omitempty"`
		Parents    []Parent       `json:"parents,omitempty"`
		Version    string         `json:"version,omitempty"`
		SourceURL  string         `json:"source_url,omitempty"`
		VersionURL string         `json:"version_url,omitempty"`
		History    []Revision     `json:"history,omitempty"`
		Extra      map[string]any `json:"extra,omitempty"` // remaining front matter
	}
	// Response overrides how a page is answered
	Response struct {
		Status   int    `json:"status,omitempty"`
		Deleted  bool   `json:"deleted,omitempty"`
		Location string `json:"location,omitempty"`
	}
	// Parent references an ancestor page for bread crumbs
	Parent struct {
		PagePath string `json:"page_path"`
		Title    string `json:"title"`
		// set when the parent is an index page, e.g. "foo" for "foo/index"
		PathForReference string `json:"path_for_reference,omitempty"`
	}
	// Revision a single entry of a page's revision history
	Revision struct {
		URL     string    `json:"url,omitempty"`
		Time    time.Time `json:"time"`
		Message string    `json:"message"`
	}
)

// StatusCode returns the configured status or 200
func (r *Response) StatusCode() Status {
	if r == nil || r.Status == 0 {
		return StatusOk
	}
	return Status(r.Status)
}

// ExcludedFromTree deleted pages, redirects and errors are still servable
// but never show up in the navigation
func (m *Metadata) ExcludedFromTree() bool {
	if m == nil || m.Response == nil {
		return false
	}
	return m.Response.Deleted || m.Response.StatusCode().IsRedirectOrError()
}

// IsDeleted whether the page is a tombstone
func (m *Metadata) IsDeleted() bool {
	return m != nil && m.Response != nil && m.Response.Deleted
}

// Get looks up an arbitrary front matter value
func (m *Metadata) Get(key string) (any, bool) {
	if m == nil || m.Extra == nil {
		return nil, false
	}
	v, ok := m.Extra[key]
	return v, ok
}
