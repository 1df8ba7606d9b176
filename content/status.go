package content

// Status status type for served pages
type Status int

const (
	// StatusOk we found content
	StatusOk Status = 200
	// StatusFound the page is a redirect
	StatusFound Status = 302
	// StatusNotFound we did not find content, or it was deleted
	StatusNotFound Status = 404
)

// IsRedirectOrError pages with such a status are not part of the navigation tree
func (s Status) IsRedirectOrError() bool {
	return s >= 300
}
