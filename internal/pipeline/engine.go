// Package pipeline runs the match pipeline: ingest both users, synthesize
// their dossiers, cross-reference them, optionally find venues, then coach.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

type Stage string

const (
	StageIngest     Stage = "ingest"
	StageSynthesize Stage = "synthesize"
	StageCrossRef   Stage = "crossref"
	StageVenue      Stage = "venue"
	StageCoach      Stage = "coach"
	StageTerminal   Stage = "terminal"
)

// StageFunc computes a stage's patch from a snapshot of the cumulative state.
type StageFunc func(ctx context.Context, state models.PipelineState) (models.Patch, error)

// transitions maps each stage to the function choosing its successor. The
// terminal stage has no entry and is the only accepting state.
var transitions = map[Stage]func(models.PipelineState) Stage{
	StageIngest:     func(models.PipelineState) Stage { return StageSynthesize },
	StageSynthesize: func(models.PipelineState) Stage { return StageCrossRef },
	StageCrossRef: func(s models.PipelineState) Stage {
		if s.IncludeVenue {
			return StageVenue
		}
		return StageCoach
	},
	StageVenue: func(models.PipelineState) Stage { return StageCoach },
	StageCoach: func(models.PipelineState) Stage { return StageTerminal },
}

// maxSteps bounds a run; the graph is acyclic so a correct table never hits it.
const maxSteps = 16

// StageError wraps the failure of a single stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

type EventType string

const (
	EventStage EventType = "stage"
	EventDone  EventType = "done"
	EventError EventType = "error"
)

// Event is emitted in observation mode after each stage merge, then once more
// when the run finishes or fails.
type Event struct {
	Type  EventType             `json:"type"`
	Stage Stage                 `json:"stage,omitempty"`
	State *models.PipelineState `json:"state,omitempty"`
	Error string                `json:"error,omitempty"`
}

// Observer receives events. Returning an error aborts the run.
type Observer func(Event) error

type Engine struct {
	stages map[Stage]StageFunc
}

// New builds an engine over the default stage functions.
func New(deps Deps) *Engine {
	return newEngine(deps.stages())
}

func newEngine(stages map[Stage]StageFunc) *Engine {
	return &Engine{stages: stages}
}

// Run executes the pipeline to completion. On any stage failure it returns
// nil and the error; partial state is never returned.
func (e *Engine) Run(ctx context.Context, a, b models.UserIdentity, includeVenueHint bool) (*models.PipelineState, error) {
	return e.Stream(ctx, a, b, includeVenueHint, nil)
}

// Stream is Run with an observer notified after every stage. Scheduling and
// ordering are the same as Run.
func (e *Engine) Stream(ctx context.Context, a, b models.UserIdentity, includeVenueHint bool, observe Observer) (*models.PipelineState, error) {
	state := models.PipelineState{
		RunID:        uuid.NewString(),
		UserA:        models.UserProfile{Identity: a.Clone(), RawData: models.RawDataBundle{}, Dossier: models.EmptyDossier()},
		UserB:        models.UserProfile{Identity: b.Clone(), RawData: models.RawDataBundle{}, Dossier: models.EmptyDossier()},
		CrossRef:     models.EmptyCrossRef(),
		Venues:       []models.VenueRecommendation{},
		IncludeVenue: includeVenueHint,
		Trace:        []string{},
	}
	log := zap.L().With(zap.String("run_id", state.RunID))

	fail := func(stage Stage, err error) (*models.PipelineState, error) {
		serr := &StageError{Stage: stage, Err: err}
		log.Error("pipeline failed", zap.String("stage", string(stage)), zap.Error(err))
		if observe != nil {
			_ = observe(Event{Type: EventError, Stage: stage, Error: serr.Error()})
		}
		return nil, serr
	}

	current := StageIngest
	for step := 0; current != StageTerminal; step++ {
		if step >= maxSteps {
			return fail(current, fmt.Errorf("exceeded %d steps", maxSteps))
		}
		if err := ctx.Err(); err != nil {
			return fail(current, err)
		}
		fn, ok := e.stages[current]
		if !ok {
			return fail(current, fmt.Errorf("no stage function registered"))
		}

		log.Info("stage started", zap.String("stage", string(current)))
		patch, err := fn(ctx, state.Snapshot())
		if err != nil {
			return fail(current, err)
		}
		state.Apply(patch)
		state.Trace = append(state.Trace, string(current))

		if observe != nil {
			snap := state.Snapshot()
			if err := observe(Event{Type: EventStage, Stage: current, State: &snap}); err != nil {
				return fail(current, fmt.Errorf("observer: %w", err))
			}
		}

		next, ok := transitions[current]
		if !ok {
			return fail(current, fmt.Errorf("no transition from stage"))
		}
		current = next(state)
	}

	log.Info("pipeline finished", zap.Strings("trace", state.Trace), zap.Bool("include_venue", state.IncludeVenue))
	if observe != nil {
		snap := state.Snapshot()
		if err := observe(Event{Type: EventDone, Stage: StageTerminal, State: &snap}); err != nil {
			return nil, &StageError{Stage: StageTerminal, Err: fmt.Errorf("observer: %w", err)}
		}
	}
	return &state, nil
}
