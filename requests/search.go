package requests

import (
	"strconv"
)

const (
	// DefaultSearchLimit number of hits per result page
	DefaultSearchLimit = 20
	// MaxSearchLimit upper bound for the requested number of hits
	MaxSearchLimit = 50
	// MaxSearchPage upper bound for the requested result page
	MaxSearchPage = 1000
)

// Search a full text query against the index of a site
type Search struct {
	// query string in the bleve query string syntax
	Query string `json:"q"`
	// one based result page
	Page int `json:"p"`
	// hits per page
	Limit int `json:"l"`
}

// NewSearch parses raw query parameters, bad or missing numbers fall back
// to their defaults
func NewSearch(q, limit, page string) *Search {
	s := &Search{
		Query: q,
		Page:  1,
		Limit: DefaultSearchLimit,
	}
	if v, err := strconv.Atoi(limit); err == nil {
		s.Limit = v
	}
	if v, err := strconv.Atoi(page); err == nil {
		s.Page = v
	}
	s.Normalize()
	return s
}

// Normalize clamps page and limit into their valid ranges
func (s *Search) Normalize() {
	if s.Limit > MaxSearchLimit {
		s.Limit = MaxSearchLimit
	}
	if s.Limit < 1 {
		s.Limit = DefaultSearchLimit
	}
	if s.Page < 1 {
		s.Page = 1
	}
	if s.Page > MaxSearchPage {
		s.Page = MaxSearchPage
	}
}

// Offset of the first hit
func (s *Search) Offset() int {
	return (s.Page - 1) * s.Limit
}
