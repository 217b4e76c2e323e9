package profiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/starstruck-agent/internal/contract"
	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

// scripted answers every call with the response registered for its task and
// records what it was sent.
type scripted struct {
	mu        sync.Mutex
	responses map[string]string
	calls     []recordedCall
}

type recordedCall struct {
	task     string
	system   string
	messages []Message
}

func newScripted(responses map[string]string) *scripted {
	return &scripted{responses: responses}
}

func (s *scripted) Generate(ctx context.Context, system string, messages []Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := TaskFrom(ctx)
	s.calls = append(s.calls, recordedCall{task: task, system: system, messages: messages})
	resp, ok := s.responses[task]
	if !ok {
		return "", fmt.Errorf("no scripted response for %s", task)
	}
	return resp, nil
}

func (s *scripted) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

const dossierJSON = `{
  "public": {"vibe": "quiet chaos", "tags": ["a","b","c","d","e"], "schedule_pattern": "night_owl"},
  "private": {"summary": "secret summary", "traits": ["x","y","z"], "interests": ["1","2","3","4","5"], "deep_cuts": ["p","q"]},
  "data_sources": ["myspace"]
}`

func filledDossier(vibe string) models.Dossier {
	d := models.EmptyDossier()
	d.Public.Vibe = vibe
	d.Public.Tags = []string{"t1", "t2", "t3", "t4", "t5"}
	d.Private.Summary = vibe + " private summary"
	d.DataSources = []string{"github"}
	return d
}

func TestProfileAnalysisEmptyBundleSkipsGenerator(t *testing.T) {
	gen := newScripted(nil)
	d, err := NewService(gen).ProfileAnalysis(context.Background(), models.RawDataBundle{})

	require.NoError(t, err)
	assert.Equal(t, models.EmptyDossier(), d)
	assert.True(t, d.IsEmpty())
	assert.Zero(t, gen.count())
}

func TestProfileAnalysisSendsOnlyPresentSources(t *testing.T) {
	gen := newScripted(map[string]string{TaskProfile: dossierJSON})
	bundle := models.RawDataBundle{
		"spotify": {"top_genres": []any{"idm"}},
		"github":  {"languages": []any{"Go"}},
	}

	d, err := NewService(gen).ProfileAnalysis(context.Background(), bundle)
	require.NoError(t, err)

	assert.Equal(t, []string{"github", "spotify"}, d.DataSources)
	assert.Equal(t, "night_owl", d.Public.SchedulePattern)

	require.Equal(t, 1, gen.count())
	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(gen.calls[0].messages[0].Content), &sent))
	assert.Len(t, sent, 2)
	assert.Contains(t, sent, "github")
	assert.Contains(t, sent, "spotify")
	assert.Equal(t, profilePrompt, gen.calls[0].system)
}

func TestProfileAnalysisFencedEqualsUnfenced(t *testing.T) {
	bundle := models.RawDataBundle{"github": {"languages": []any{"Go"}}}

	plain, err := NewService(newScripted(map[string]string{TaskProfile: dossierJSON})).ProfileAnalysis(context.Background(), bundle)
	require.NoError(t, err)
	fenced, err := NewService(newScripted(map[string]string{TaskProfile: "```json\n" + dossierJSON + "\n```"})).ProfileAnalysis(context.Background(), bundle)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
}

func TestProfileAnalysisContractViolations(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"prose", "Sure! Here is the dossier you asked for."},
		{"missing private", `{"public": {"vibe": "x", "tags": [], "schedule_pattern": "mixed"}}`},
		{"bad schedule", strings.Replace(dossierJSON, "night_owl", "vampire", 1)},
		{"array", `[1,2,3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := newScripted(map[string]string{TaskProfile: tt.resp})
			_, err := NewService(gen).ProfileAnalysis(context.Background(), models.RawDataBundle{"github": {"x": 1}})

			var v *contract.Violation
			require.ErrorAs(t, err, &v)
			assert.Equal(t, TaskProfile, v.Stage)
			assert.ErrorIs(t, err, contract.ErrContractViolation)
		})
	}
}

func TestProfileAnalysisGeneratorError(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, string, []Message) (string, error) {
		return "", ErrNoContent
	})
	_, err := NewService(gen).ProfileAnalysis(context.Background(), models.RawDataBundle{"github": {"x": 1}})
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestCrossReferenceEmptyDossierSkipsGenerator(t *testing.T) {
	gen := newScripted(nil)
	svc := NewService(gen)

	res, ok, err := svc.CrossReference(context.Background(), models.EmptyDossier(), filledDossier("a"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, models.EmptyCrossRef(), res)

	_, _, err = svc.CrossReference(context.Background(), filledDossier("a"), models.Dossier{})
	require.NoError(t, err)
	assert.Zero(t, gen.count())
}

func TestCrossReferencePopsVenueFlag(t *testing.T) {
	resp := `{"shared":[{"signal":"jazz","detail":"both","source":"spotify"}],
	  "complementary":[],"tension_points":[],"citations":["a","b","c"],"venue_appropriate":true}`
	gen := newScripted(map[string]string{TaskCrossRef: resp})

	res, ok, err := NewService(gen).CrossReference(context.Background(), filledDossier("a"), filledDossier("b"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, res.Shared, 1)

	buf, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(buf), "venue_appropriate")
}

func TestCrossReferenceRejectsNonBooleanFlag(t *testing.T) {
	resp := `{"shared":[],"complementary":[],"tension_points":[],"citations":[],"venue_appropriate":"yes"}`
	_, _, err := NewService(newScripted(map[string]string{TaskCrossRef: resp})).
		CrossReference(context.Background(), filledDossier("a"), filledDossier("b"))
	assert.ErrorIs(t, err, contract.ErrContractViolation)
}

func TestCrossReferenceCitationFloorWithFake(t *testing.T) {
	res, ok, err := NewService(NewFakeGenerator(true)).CrossReference(context.Background(), filledDossier("a"), filledDossier("b"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, len(res.Citations), 3)
}

func TestBrainstormVenuesCapsIdeas(t *testing.T) {
	resp := `{"ideas":[{"name":"a","search_query":"qa"},{"name":"","search_query":""},
	  {"name":"b","search_query":"qb"},{"name":"c","search_query":"qc"},{"name":"d","search_query":"qd"}]}`
	ideas, err := NewService(newScripted(map[string]string{TaskBrainstorm: resp})).
		BrainstormVenues(context.Background(), models.EmptyCrossRef())
	require.NoError(t, err)
	assert.Equal(t, []models.VenueIdea{{Name: "a", SearchQuery: "qa"}, {Name: "b", SearchQuery: "qb"}, {Name: "c", SearchQuery: "qc"}}, ideas)

	_, err = NewService(newScripted(map[string]string{TaskBrainstorm: `{"ideas":[]}`})).
		BrainstormVenues(context.Background(), models.EmptyCrossRef())
	assert.ErrorIs(t, err, contract.ErrContractViolation)
}

func TestRankVenuesKeepsPoolNamesOnly(t *testing.T) {
	var pool []models.VenueCandidate
	for i := 0; i < 22; i++ {
		pool = append(pool, models.VenueCandidate{Name: fmt.Sprintf("Venue %02d", i), Address: fmt.Sprintf("%d Main St", i), Types: []string{}})
	}
	resp := `{"venues":[
	  {"name":"Imaginary Bar","reason":"made up","tips":[],"relevance_score":0.99},
	  {"name":"Venue 07","reason":"late","tips":["go early"],"relevance_score":0.9},
	  {"name":"Venue 07","reason":"dup","relevance_score":0.8},
	  {"name":"Venue 03","reason":"quiet","relevance_score":0.7},
	  {"name":"Venue 15","reason":"fun","relevance_score":0.6},
	  {"name":"Venue 01","reason":"extra","relevance_score":0.5}
	]}`
	gen := newScripted(map[string]string{TaskRank: resp})

	recs, err := NewService(gen).RankVenues(context.Background(), RankInput{Candidates: pool})
	require.NoError(t, err)

	require.Len(t, recs, models.MaxVenueRecommendations)
	names := []string{recs[0].Name, recs[1].Name, recs[2].Name}
	assert.Equal(t, []string{"Venue 07", "Venue 03", "Venue 15"}, names)
	assert.Equal(t, "7 Main St", recs[0].Address)
	assert.Equal(t, []string{"go early"}, recs[0].Tips)
	assert.Equal(t, []string{}, recs[1].Tips)
}

func TestRankVenuesNoCandidatesSkipsGenerator(t *testing.T) {
	gen := newScripted(nil)
	recs, err := NewService(gen).RankVenues(context.Background(), RankInput{})
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.NotNil(t, recs)
	assert.Zero(t, gen.count())
}

func TestGenerateCoachingSendsOnlyPublicTierOfMatch(t *testing.T) {
	gen := NewFakeGenerator(false)
	var sent string
	spy := GeneratorFunc(func(ctx context.Context, system string, msgs []Message) (string, error) {
		sent = msgs[0].Content
		return gen.Generate(ctx, system, msgs)
	})

	self, other := filledDossier("me"), filledDossier("them")
	b, err := NewService(spy).GenerateCoaching(context.Background(), CoachingInput{
		Self:     self,
		Match:    other.Public,
		CrossRef: models.EmptyCrossRef(),
	})
	require.NoError(t, err)

	assert.Len(t, b.ConversationPlaybook, 3)
	assert.Len(t, b.MinefieldMap, 2)
	assert.NotContains(t, sent, "them private summary")
	assert.Contains(t, sent, "me private summary")
	assert.Contains(t, sent, `"venue":null`)
}

func TestGenerateCoachingWrongPlaybookLength(t *testing.T) {
	resp := `{"match_intel":"x","conversation_playbook":["a","b"],"minefield_map":["c","d"],
	  "venue_cheat_sheet":"","vibe_calibration":""}`
	_, err := NewService(newScripted(map[string]string{TaskCoaching: resp})).
		GenerateCoaching(context.Background(), CoachingInput{})
	assert.ErrorIs(t, err, contract.ErrContractViolation)
}

func TestWrapOrderAndTimeout(t *testing.T) {
	var order []string
	tag := func(name string) Middleware {
		return func(next Generator) Generator {
			return GeneratorFunc(func(ctx context.Context, s string, m []Message) (string, error) {
				order = append(order, name)
				return next.Generate(ctx, s, m)
			})
		}
	}
	inner := GeneratorFunc(func(ctx context.Context, _ string, _ []Message) (string, error) {
		_, hasDeadline := ctx.Deadline()
		if !hasDeadline {
			return "", errors.New("no deadline")
		}
		return "ok", nil
	})

	g := Wrap(inner, tag("a"), WithLogging(nil), tag("b"), WithTimeout(time.Second))
	out, err := g.Generate(context.Background(), "sys", []Message{{Role: RoleUser, Content: "hi"}})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestFakeGeneratorUnknownTask(t *testing.T) {
	_, err := NewFakeGenerator(true).Generate(context.Background(), "", nil)
	assert.Error(t, err)
	assert.Equal(t, "unknown", TaskFrom(context.Background()))
}
