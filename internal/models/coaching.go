package models

// CoachingBriefing is written for one user about the other.
type CoachingBriefing struct {
	MatchIntel           string   `json:"match_intel"`
	ConversationPlaybook []string `json:"conversation_playbook" validate:"len=3"`
	MinefieldMap         []string `json:"minefield_map" validate:"len=2"`
	VenueCheatSheet      string   `json:"venue_cheat_sheet"`
	VibeCalibration      string   `json:"vibe_calibration"`
}

// CoachingCard is a display-ready slice of a briefing.
type CoachingCard struct {
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Content string `json:"content"`
}

// Cards flattens a briefing into display cards, skipping empty sections.
func (b CoachingBriefing) Cards() []CoachingCard {
	cards := make([]CoachingCard, 0, 5)
	add := func(label, icon, content string) {
		if content != "" {
			cards = append(cards, CoachingCard{Label: label, Icon: icon, Content: content})
		}
	}
	add("Match Intel", "radar", b.MatchIntel)
	for _, line := range b.ConversationPlaybook {
		add("Conversation Playbook", "chat", line)
	}
	for _, line := range b.MinefieldMap {
		add("Minefield Map", "warning", line)
	}
	add("Venue Cheat Sheet", "pin", b.VenueCheatSheet)
	add("Vibe Calibration", "sparkles", b.VibeCalibration)
	return cards
}
