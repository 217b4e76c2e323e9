package handler

import (
	"github.com/BerylCAtieno/starstruck-agent/internal/models"
	"github.com/BerylCAtieno/starstruck-agent/internal/pipeline"
	"github.com/BerylCAtieno/starstruck-agent/internal/sources"
)

// UserInput accepts identifiers either keyed by source or through the flat
// per-service fields older clients send. Keyed identifiers win. Spotify needs
// an OAuth access token; a bare username is not accepted.
type UserInput struct {
	Identifiers        map[string]string `json:"identifiers"`
	GitHubUsername     string            `json:"github_username"`
	SpotifyToken       string            `json:"spotify_token"`
	LetterboxdUsername string            `json:"letterboxd_username"`
	InstagramUsername  string            `json:"instagram_username"`
	LinkedInUsername   string            `json:"linkedin_username"`
	Location           string            `json:"location" binding:"max=200"`
}

func (u UserInput) Identity() models.UserIdentity {
	ids := map[string]string{
		models.SourceGitHub:     u.GitHubUsername,
		models.SourceSpotify:    u.SpotifyToken,
		models.SourceLetterboxd: u.LetterboxdUsername,
		models.SourceInstagram:  u.InstagramUsername,
		models.SourceLinkedIn:   u.LinkedInUsername,
	}
	for k, v := range u.Identifiers {
		if v != "" {
			ids[k] = v
		}
	}
	return models.NewIdentity(ids, u.Location)
}

type MatchRequest struct {
	UserA        UserInput `json:"user_a"`
	UserB        UserInput `json:"user_b"`
	IncludeVenue *bool     `json:"include_venue"`
}

// VenueHint defaults to true when the caller did not say.
func (r MatchRequest) VenueHint() bool {
	return r.IncludeVenue == nil || *r.IncludeVenue
}

type CoachingResponse struct {
	RunID      string                       `json:"run_id"`
	UserACards []models.CoachingCard        `json:"user_a_cards"`
	UserBCards []models.CoachingCard        `json:"user_b_cards"`
	Venues     []models.VenueRecommendation `json:"venues"`
	CoachingA  models.CoachingBriefing      `json:"coaching_a"`
	CoachingB  models.CoachingBriefing      `json:"coaching_b"`
	CrossRef   models.CrossRefResult        `json:"cross_ref"`
	Reconnect  map[string][]string          `json:"reconnect,omitempty"`
	Trace      []string                     `json:"trace"`
}

// NewCoachingResponse builds the client view of a finished run.
func NewCoachingResponse(s *models.PipelineState) CoachingResponse {
	resp := CoachingResponse{
		RunID:      s.RunID,
		UserACards: s.CoachingA.Cards(),
		UserBCards: s.CoachingB.Cards(),
		Venues:     s.Venues,
		CoachingA:  s.CoachingA,
		CoachingB:  s.CoachingB,
		CrossRef:   s.CrossRef,
		Trace:      s.Trace,
	}
	if len(s.UserA.Reconnect) > 0 || len(s.UserB.Reconnect) > 0 {
		resp.Reconnect = map[string][]string{}
		if len(s.UserA.Reconnect) > 0 {
			resp.Reconnect["user_a"] = s.UserA.Reconnect
		}
		if len(s.UserB.Reconnect) > 0 {
			resp.Reconnect["user_b"] = s.UserB.Reconnect
		}
	}
	return resp
}

type ConnectRequest struct {
	Service    string `json:"service" binding:"required"`
	Identifier string `json:"identifier" binding:"required"`
}

type ConnectResponse struct {
	Service string         `json:"service"`
	Status  string         `json:"status"`
	Preview string         `json:"preview"`
	Data    models.Payload `json:"data,omitempty"`
}

type AnalyzeRequest struct {
	User UserInput `json:"user"`
}

type AnalyzeResponse struct {
	Dossier   models.Dossier    `json:"dossier"`
	Findings  []sources.Finding `json:"findings"`
	Fetched   []string          `json:"fetched"`
	Omitted   map[string]string `json:"omitted,omitempty"`
	Reconnect []string          `json:"reconnect,omitempty"`
}

// streamEvent is the SSE payload for one pipeline event.
type streamEvent struct {
	Stage string                `json:"stage,omitempty"`
	State *models.PipelineState `json:"state,omitempty"`
	Error string                `json:"error,omitempty"`
}

func toStreamEvent(ev pipeline.Event) (string, streamEvent) {
	name := "node_complete"
	switch ev.Type {
	case pipeline.EventDone:
		name = "done"
	case pipeline.EventError:
		name = "error"
	}
	return name, streamEvent{Stage: string(ev.Stage), State: ev.State, Error: ev.Error}
}
