// Package profiler turns raw personal data into dossiers, cross-references,
// venue picks and coaching briefings through a text-generation service.
// Every response is parsed by the contract package; nothing is defaulted.
package profiler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/contract"
	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const maxIdeas = 3

type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// ProfileAnalysis synthesizes a dossier from one user's bundle. An empty bundle
// yields the canonical empty dossier without calling the generator.
func (s *Service) ProfileAnalysis(ctx context.Context, bundle models.RawDataBundle) (models.Dossier, error) {
	if len(bundle) == 0 {
		return models.EmptyDossier(), nil
	}

	text, err := s.call(ctx, TaskProfile, profilePrompt, bundle)
	if err != nil {
		return models.Dossier{}, err
	}
	d, err := contract.Decode[models.Dossier](TaskProfile, text, "public", "private")
	if err != nil {
		return models.Dossier{}, err
	}
	normalizeDossier(&d)
	d.DataSources = bundle.Sources()
	return d, nil
}

// CrossReference compares two dossiers and reports whether a venue detour is
// worthwhile. Either dossier empty yields the canonical empty result and false.
func (s *Service) CrossReference(ctx context.Context, a, b models.Dossier) (models.CrossRefResult, bool, error) {
	if a.IsEmpty() || b.IsEmpty() {
		return models.EmptyCrossRef(), false, nil
	}

	text, err := s.call(ctx, TaskCrossRef, crossRefPrompt, map[string]models.Dossier{"user_a": a, "user_b": b})
	if err != nil {
		return models.CrossRefResult{}, false, err
	}
	rec, err := contract.Parse(TaskCrossRef, text, "shared", "complementary", "tension_points", "citations")
	if err != nil {
		return models.CrossRefResult{}, false, err
	}
	appropriate, err := rec.TakeBool("venue_appropriate")
	if err != nil {
		return models.CrossRefResult{}, false, err
	}
	var res models.CrossRefResult
	if err := rec.Decode(&res); err != nil {
		return models.CrossRefResult{}, false, err
	}
	normalizeCrossRef(&res)
	return res, appropriate, nil
}

type ideasRecord struct {
	Ideas []models.VenueIdea `json:"ideas" validate:"min=1"`
}

// BrainstormVenues proposes date ideas with search queries for them.
func (s *Service) BrainstormVenues(ctx context.Context, cr models.CrossRefResult) ([]models.VenueIdea, error) {
	text, err := s.call(ctx, TaskBrainstorm, brainstormPrompt, cr)
	if err != nil {
		return nil, err
	}
	rec, err := contract.Decode[ideasRecord](TaskBrainstorm, text, "ideas")
	if err != nil {
		return nil, err
	}
	ideas := make([]models.VenueIdea, 0, maxIdeas)
	for _, idea := range rec.Ideas {
		if idea.SearchQuery == "" && idea.Name == "" {
			continue
		}
		ideas = append(ideas, idea)
		if len(ideas) == maxIdeas {
			break
		}
	}
	return ideas, nil
}

type rankedPick struct {
	Name           string   `json:"name"`
	Reason         string   `json:"reason"`
	Tips           []string `json:"tips"`
	RelevanceScore float64  `json:"relevance_score"`
}

type rankRecord struct {
	Venues []rankedPick `json:"venues"`
}

// RankInput is what the ranking call sees.
type RankInput struct {
	Candidates []models.VenueCandidate `json:"candidates"`
	CrossRef   models.CrossRefResult   `json:"cross_ref"`
	Schedules  map[string]string       `json:"schedule_patterns"`
}

// RankVenues picks at most three venues from the candidate pool. Picks naming
// a venue outside the pool are dropped. No candidates means no call.
func (s *Service) RankVenues(ctx context.Context, in RankInput) ([]models.VenueRecommendation, error) {
	if len(in.Candidates) == 0 {
		return []models.VenueRecommendation{}, nil
	}

	text, err := s.call(ctx, TaskRank, rankPrompt, in)
	if err != nil {
		return nil, err
	}
	rec, err := contract.Decode[rankRecord](TaskRank, text, "venues")
	if err != nil {
		return nil, err
	}
	return joinPicks(rec.Venues, in.Candidates), nil
}

func joinPicks(picks []rankedPick, pool []models.VenueCandidate) []models.VenueRecommendation {
	byName := make(map[string]models.VenueCandidate, len(pool))
	for _, c := range pool {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}

	out := make([]models.VenueRecommendation, 0, models.MaxVenueRecommendations)
	used := make(map[string]bool)
	for _, p := range picks {
		cand, ok := byName[p.Name]
		if !ok {
			zap.L().Warn("ranked venue not in candidate pool, dropped", zap.String("venue", p.Name))
			continue
		}
		if used[p.Name] {
			continue
		}
		used[p.Name] = true
		tips := p.Tips
		if tips == nil {
			tips = []string{}
		}
		out = append(out, models.VenueRecommendation{
			VenueCandidate: cand,
			Reason:         p.Reason,
			Tips:           tips,
			RelevanceScore: p.RelevanceScore,
		})
		if len(out) == models.MaxVenueRecommendations {
			break
		}
	}
	return out
}

// CoachingInput is one briefing's view: the user's own dossier, only the
// public tier of the match, the shared cross-reference and the chosen venue.
type CoachingInput struct {
	Self     models.Dossier              `json:"self"`
	Match    models.DossierPublic        `json:"match"`
	CrossRef models.CrossRefResult       `json:"cross_ref"`
	Venue    *models.VenueRecommendation `json:"venue"`
}

func (s *Service) GenerateCoaching(ctx context.Context, in CoachingInput) (models.CoachingBriefing, error) {
	text, err := s.call(ctx, TaskCoaching, coachingPrompt, in)
	if err != nil {
		return models.CoachingBriefing{}, err
	}
	return contract.Decode[models.CoachingBriefing](TaskCoaching, text,
		"match_intel", "conversation_playbook", "minefield_map", "venue_cheat_sheet", "vibe_calibration")
}

func (s *Service) call(ctx context.Context, task, prompt string, input any) (string, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("%s: encode input: %w", task, err)
	}
	ctx = WithTask(ctx, task)
	text, err := s.gen.Generate(ctx, prompt, []Message{{Role: RoleUser, Content: string(body)}})
	if err != nil {
		return "", fmt.Errorf("%s: %w", task, err)
	}
	return text, nil
}

func normalizeDossier(d *models.Dossier) {
	for _, s := range []*[]string{&d.Public.Tags, &d.Private.Traits, &d.Private.Interests, &d.Private.DeepCuts} {
		if *s == nil {
			*s = []string{}
		}
	}
}

func normalizeCrossRef(c *models.CrossRefResult) {
	for _, s := range []*[]models.Signal{&c.Shared, &c.Complementary, &c.TensionPoints} {
		if *s == nil {
			*s = []models.Signal{}
		}
	}
	if c.Citations == nil {
		c.Citations = []string{}
	}
}
