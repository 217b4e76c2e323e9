package models

// Schedule patterns a dossier may report.
const (
	ScheduleNightOwl  = "night_owl"
	ScheduleEarlyBird = "early_bird"
	ScheduleMixed     = "mixed"
)

type DossierPublic struct {
	Vibe            string   `json:"vibe"`
	Tags            []string `json:"tags"`
	SchedulePattern string   `json:"schedule_pattern" validate:"oneof=night_owl early_bird mixed"`
}

type DossierPrivate struct {
	Summary   string   `json:"summary"`
	Traits    []string `json:"traits"`
	Interests []string `json:"interests"`
	DeepCuts  []string `json:"deep_cuts"`
}

// Dossier is the two-tier personality record synthesized from one user's raw data.
// Public is safe to show the other user; Private never leaves that user's own briefing.
type Dossier struct {
	Public      DossierPublic  `json:"public"`
	Private     DossierPrivate `json:"private"`
	DataSources []string       `json:"data_sources"`
}

// EmptyDossier returns the canonical empty dossier. Every call returns fresh slices.
func EmptyDossier() Dossier {
	return Dossier{
		Public: DossierPublic{
			Vibe:            "",
			Tags:            []string{},
			SchedulePattern: ScheduleMixed,
		},
		Private: DossierPrivate{
			Summary:   "",
			Traits:    []string{},
			Interests: []string{},
			DeepCuts:  []string{},
		},
		DataSources: []string{},
	}
}

// IsEmpty reports whether d carries no information, i.e. equals the canonical
// empty dossier. The zero value counts as empty too.
func (d Dossier) IsEmpty() bool {
	if len(d.DataSources) > 0 {
		return false
	}
	if d.Public.Vibe != "" || len(d.Public.Tags) > 0 {
		return false
	}
	if d.Public.SchedulePattern != "" && d.Public.SchedulePattern != ScheduleMixed {
		return false
	}
	p := d.Private
	return p.Summary == "" && len(p.Traits) == 0 && len(p.Interests) == 0 && len(p.DeepCuts) == 0
}
