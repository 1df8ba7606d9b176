package responses

// SearchHit a single search result
type SearchHit struct {
	// "page" or "static"
	Kind string `json:"kind"`
	// page path or static file name
	Path  string  `json:"path"`
	Title string  `json:"title,omitempty"`
	URL   string  `json:"url,omitempty"`
	Score float64 `json:"score"`
}

// Search - one page of search results
type Search struct {
	Query string      `json:"q"`
	Page  int         `json:"p"`
	Limit int         `json:"l"`
	Total uint64      `json:"total"`
	Hits  []SearchHit `json:"hits"`
	// seconds
	Took float64 `json:"took"`
}

// Pages number of result pages
func (s *Search) Pages() int {
	if s.Limit <= 0 {
		return 0
	}
	return int((s.Total + uint64(s.Limit) - 1) / uint64(s.Limit))
}

// HasNext whether there is a result page after the current one
func (s *Search) HasNext() bool {
	return s.Page < s.Pages()
}
