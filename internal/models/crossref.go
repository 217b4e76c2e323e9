package models

// Signal is one categorized observation in a cross-reference.
type Signal struct {
	Signal string `json:"signal"`
	Detail string `json:"detail"`
	Source string `json:"source"`
}

// CrossRefResult compares two dossiers. The generator's venue_appropriate flag
// is carried separately and never stored here.
type CrossRefResult struct {
	Shared        []Signal `json:"shared"`
	Complementary []Signal `json:"complementary"`
	TensionPoints []Signal `json:"tension_points"`
	Citations     []string `json:"citations"`
}

func EmptyCrossRef() CrossRefResult {
	return CrossRefResult{
		Shared:        []Signal{},
		Complementary: []Signal{},
		TensionPoints: []Signal{},
		Citations:     []string{},
	}
}

func (c CrossRefResult) IsEmpty() bool {
	return len(c.Shared) == 0 && len(c.Complementary) == 0 &&
		len(c.TensionPoints) == 0 && len(c.Citations) == 0
}
