package responses

// Build - information about a build run
type Build struct {
	// unique id of this run
	RunID string `json:"runId"`
	Site  string `json:"site"`
	// did it work or not
	Success bool `json:"success"`
	// this is for humans
	ErrorMessage string     `json:"errorMessage,omitempty"`
	Stats        BuildStats `json:"stats"`
}

type BuildStats struct {
	NumberOfPages     int `json:"numberOfPages"`
	NumberOfStatic    int `json:"numberOfStatic"`
	NumberOfTemplates int `json:"numberOfTemplates"`
	NumberOfIndexed   int `json:"numberOfIndexed"`
	// seconds
	RenderRuntime float64 `json:"renderRuntime"`
	// seconds
	OwnRuntime float64 `json:"ownRuntime"`
}
