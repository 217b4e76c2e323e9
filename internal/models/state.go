package models

// PipelineState is the aggregate threaded through every stage of one run.
// It lives for a single request and is owned by the engine.
type PipelineState struct {
	RunID        string                `json:"run_id"`
	UserA        UserProfile           `json:"user_a"`
	UserB        UserProfile           `json:"user_b"`
	CrossRef     CrossRefResult        `json:"cross_ref"`
	Venues       []VenueRecommendation `json:"venues"`
	CoachingA    CoachingBriefing      `json:"coaching_a"`
	CoachingB    CoachingBriefing      `json:"coaching_b"`
	IncludeVenue bool                  `json:"include_venue"`
	Error        string                `json:"error,omitempty"`
	Trace        []string              `json:"trace"`
}

// Patch is a stage's partial update. Nil fields are left untouched; set fields
// replace the whole value (no deep merge).
type Patch struct {
	UserA        *UserProfile
	UserB        *UserProfile
	CrossRef     *CrossRefResult
	Venues       *[]VenueRecommendation
	CoachingA    *CoachingBriefing
	CoachingB    *CoachingBriefing
	IncludeVenue *bool
}

// Apply overwrites the fields the patch owns.
func (s *PipelineState) Apply(p Patch) {
	if p.UserA != nil {
		s.UserA = *p.UserA
	}
	if p.UserB != nil {
		s.UserB = *p.UserB
	}
	if p.CrossRef != nil {
		s.CrossRef = *p.CrossRef
	}
	if p.Venues != nil {
		s.Venues = *p.Venues
	}
	if p.CoachingA != nil {
		s.CoachingA = *p.CoachingA
	}
	if p.CoachingB != nil {
		s.CoachingB = *p.CoachingB
	}
	if p.IncludeVenue != nil {
		s.IncludeVenue = *p.IncludeVenue
	}
}

// Snapshot returns a copy whose top-level slices and maps are not shared with s.
// Payload contents are shared; stages treat them as read-only.
func (s PipelineState) Snapshot() PipelineState {
	out := s
	out.UserA = s.UserA.snapshot()
	out.UserB = s.UserB.snapshot()
	out.Venues = append([]VenueRecommendation(nil), s.Venues...)
	out.Trace = append([]string(nil), s.Trace...)
	return out
}

func (u UserProfile) snapshot() UserProfile {
	out := u
	out.Identity = u.Identity.Clone()
	if u.RawData != nil {
		out.RawData = make(RawDataBundle, len(u.RawData))
		for k, v := range u.RawData {
			out.RawData[k] = v
		}
	}
	out.Reconnect = append([]string(nil), u.Reconnect...)
	return out
}

// Bool is a small helper for building patches.
func Bool(v bool) *bool { return &v }
