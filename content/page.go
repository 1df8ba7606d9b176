package content

type (
	// SourcePage a markdown page loaded from the site source
	SourcePage struct {
		PagePath string
		Title    string
		Content  []byte
		Metadata *Metadata
	}
	// Page a built page as it is served
	Page struct {
		PagePath string
		Content  []byte
		Metadata *Metadata
	}
)
