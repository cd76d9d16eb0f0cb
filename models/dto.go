package models

// RenderRequest is the input of the image rendering capability.
type RenderRequest struct {
	Avatar   ImageRef
	Clothing []ImageRef
	Mood     string
	Steering string
}

// OutfitSelectionRequest is the input of the outfit reasoning capability.
// CandidateNames must be exactly the names available in the wardrobe.
type OutfitSelectionRequest struct {
	Occasion       string
	CandidateNames []string
	StyleNotes     string
	PreferredNames []string
}

type OutfitSelection struct {
	Selection   []string `json:"selection"`
	Reasoning   string   `json:"reasoning"`
	Affirmation string   `json:"affirmation,omitempty"`
}

// MaxOutfitSelection caps how many items the stylist may choose.
const MaxOutfitSelection = 4

type MoodOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}
