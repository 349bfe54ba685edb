package model

// Spot is a point of interest served by the content store.
type Spot struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Area        string   `json:"area"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Locale      string   `json:"locale"`
	AccessNotes string   `json:"accessNotes,omitempty"`
}

type SpotQuery struct {
	Locale string
	Tags   []string
	City   string
	Limit  int
}
