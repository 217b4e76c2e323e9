package models

// VenueCandidate is raw venue search output. Order and count are the search
// provider's, not a ranking.
type VenueCandidate struct {
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	Rating     *float64 `json:"rating,omitempty"`
	PriceLevel string   `json:"price_level,omitempty"`
	Hours      []string `json:"hours,omitempty"`
	Types      []string `json:"types"`
}

// VenueIdea is one brainstormed activity concept with the query used to find it.
type VenueIdea struct {
	Name        string `json:"name"`
	SearchQuery string `json:"search_query"`
}

// VenueRecommendation is a ranked candidate with the ranking stage's justification.
type VenueRecommendation struct {
	VenueCandidate
	Reason         string   `json:"reason"`
	Tips           []string `json:"tips"`
	RelevanceScore float64  `json:"relevance_score"`
}

// MaxVenueRecommendations caps the ranked venue list.
const MaxVenueRecommendations = 3
