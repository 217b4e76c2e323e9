package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
	"github.com/BerylCAtieno/starstruck-agent/internal/profiler"
	"github.com/BerylCAtieno/starstruck-agent/internal/sources"
	"github.com/BerylCAtieno/starstruck-agent/internal/venues"
)

// maxCandidatesPerQuery caps how many search results one idea contributes.
const maxCandidatesPerQuery = 5

// Analyst is the generation-backed half of the pipeline.
type Analyst interface {
	ProfileAnalysis(ctx context.Context, bundle models.RawDataBundle) (models.Dossier, error)
	CrossReference(ctx context.Context, a, b models.Dossier) (models.CrossRefResult, bool, error)
	BrainstormVenues(ctx context.Context, cr models.CrossRefResult) ([]models.VenueIdea, error)
	RankVenues(ctx context.Context, in profiler.RankInput) ([]models.VenueRecommendation, error)
	GenerateCoaching(ctx context.Context, in profiler.CoachingInput) (models.CoachingBriefing, error)
}

// Deps are the collaborators the default stages use.
type Deps struct {
	Sources *sources.Coordinator
	Analyst Analyst
	Venues  venues.Searcher
}

func (d Deps) stages() map[Stage]StageFunc {
	return map[Stage]StageFunc{
		StageIngest:     d.ingest,
		StageSynthesize: d.synthesize,
		StageCrossRef:   d.crossRef,
		StageVenue:      d.venue,
		StageCoach:      d.coach,
	}
}

// ingest gathers both users' sources concurrently.
func (d Deps) ingest(ctx context.Context, s models.PipelineState) (models.Patch, error) {
	userA, userB := s.UserA, s.UserB
	var g errgroup.Group
	g.Go(func() error {
		gatherInto(ctx, d.Sources, &userA)
		return nil
	})
	g.Go(func() error {
		gatherInto(ctx, d.Sources, &userB)
		return nil
	})
	_ = g.Wait()
	return models.Patch{UserA: &userA, UserB: &userB}, nil
}

func gatherInto(ctx context.Context, c *sources.Coordinator, u *models.UserProfile) {
	bundle, report := c.Gather(ctx, u.Identity)
	u.RawData = bundle
	u.Reconnect = report.Reconnect
}

// synthesize builds both dossiers concurrently. Either failure aborts the run.
func (d Deps) synthesize(ctx context.Context, s models.PipelineState) (models.Patch, error) {
	userA, userB := s.UserA, s.UserB
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dossier, err := d.Analyst.ProfileAnalysis(gctx, userA.RawData)
		userA.Dossier = dossier
		return err
	})
	g.Go(func() error {
		dossier, err := d.Analyst.ProfileAnalysis(gctx, userB.RawData)
		userB.Dossier = dossier
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Patch{}, err
	}
	return models.Patch{UserA: &userA, UserB: &userB}, nil
}

// crossRef compares the dossiers. The caller's hint can only veto the venue
// detour; the generator decides whether it is worthwhile.
func (d Deps) crossRef(ctx context.Context, s models.PipelineState) (models.Patch, error) {
	res, appropriate, err := d.Analyst.CrossReference(ctx, s.UserA.Dossier, s.UserB.Dossier)
	if err != nil {
		return models.Patch{}, err
	}
	return models.Patch{CrossRef: &res, IncludeVenue: models.Bool(s.IncludeVenue && appropriate)}, nil
}

// venue brainstorms ideas, searches each one and ranks the pooled candidates.
func (d Deps) venue(ctx context.Context, s models.PipelineState) (models.Patch, error) {
	ideas, err := d.Analyst.BrainstormVenues(ctx, s.CrossRef)
	if err != nil {
		return models.Patch{}, err
	}

	location := s.UserB.Identity.Location
	if location == "" {
		location = s.UserA.Identity.Location
	}

	perIdea := make([][]models.VenueCandidate, len(ideas))
	var g errgroup.Group
	for i, idea := range ideas {
		i, idea := i, idea
		g.Go(func() error {
			perIdea[i] = d.search(ctx, idea, location)
			return nil
		})
	}
	_ = g.Wait()

	var pool []models.VenueCandidate
	for _, cands := range perIdea {
		pool = append(pool, cands...)
	}

	recs, err := d.Analyst.RankVenues(ctx, profiler.RankInput{
		Candidates: pool,
		CrossRef:   s.CrossRef,
		Schedules: map[string]string{
			"user_a": s.UserA.Dossier.Public.SchedulePattern,
			"user_b": s.UserB.Dossier.Public.SchedulePattern,
		},
	})
	if err != nil {
		return models.Patch{}, err
	}
	if len(recs) > models.MaxVenueRecommendations {
		recs = recs[:models.MaxVenueRecommendations]
	}
	return models.Patch{Venues: &recs}, nil
}

// search treats a failed query as zero results.
func (d Deps) search(ctx context.Context, idea models.VenueIdea, location string) []models.VenueCandidate {
	query := idea.SearchQuery
	if query == "" {
		query = idea.Name
	}
	cands, err := d.Venues.Search(ctx, query, location)
	if err != nil {
		zap.L().Warn("venue search failed", zap.String("query", query), zap.Error(err))
		return nil
	}
	if len(cands) > maxCandidatesPerQuery {
		cands = cands[:maxCandidatesPerQuery]
	}
	return cands
}

// coach writes both briefings concurrently. Each side sees only the other's
// public tier.
func (d Deps) coach(ctx context.Context, s models.PipelineState) (models.Patch, error) {
	var venue *models.VenueRecommendation
	if len(s.Venues) > 0 {
		v := s.Venues[0]
		venue = &v
	}

	var briefingA, briefingB models.CoachingBriefing
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		briefingA, err = d.Analyst.GenerateCoaching(gctx, profiler.CoachingInput{
			Self:     s.UserA.Dossier,
			Match:    s.UserB.Dossier.Public,
			CrossRef: s.CrossRef,
			Venue:    venue,
		})
		return err
	})
	g.Go(func() error {
		var err error
		briefingB, err = d.Analyst.GenerateCoaching(gctx, profiler.CoachingInput{
			Self:     s.UserB.Dossier,
			Match:    s.UserA.Dossier.Public,
			CrossRef: s.CrossRef,
			Venue:    venue,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Patch{}, err
	}
	return models.Patch{CoachingA: &briefingA, CoachingB: &briefingB}, nil
}
