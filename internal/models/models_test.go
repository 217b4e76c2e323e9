package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIdentityPresent(t *testing.T) {
	id := NewIdentity(map[string]string{
		SourceGitHub:   "ada",
		SourceSpotify:  "",
		SourceLinkedIn: "  ",
	}, "Lagos")

	assert.Equal(t, map[string]string{SourceGitHub: "ada"}, id.Present())
	assert.Nil(t, id.Identifiers[SourceSpotify])
	assert.Equal(t, "Lagos", id.Location)
}

func TestIdentityCloneIsIndependent(t *testing.T) {
	id := NewIdentity(map[string]string{SourceGitHub: "ada"}, "")
	clone := id.Clone()
	*clone.Identifiers[SourceGitHub] = "bob"
	clone.Identifiers[SourceSpotify] = nil

	assert.Equal(t, "ada", *id.Identifiers[SourceGitHub])
	assert.NotContains(t, id.Identifiers, SourceSpotify)
}

func TestApplyOverwritesOnlyOwnedFields(t *testing.T) {
	s := PipelineState{
		CrossRef:     CrossRefResult{Citations: []string{"old"}},
		IncludeVenue: true,
		Venues:       []VenueRecommendation{{Reason: "keep"}},
	}
	s.Apply(Patch{
		CrossRef:     &CrossRefResult{Citations: []string{"new"}},
		IncludeVenue: Bool(false),
	})

	assert.Equal(t, []string{"new"}, s.CrossRef.Citations)
	assert.False(t, s.IncludeVenue)
	assert.Len(t, s.Venues, 1)
}

func TestSnapshotDoesNotShareSlices(t *testing.T) {
	s := PipelineState{
		Trace:  []string{"ingest"},
		Venues: []VenueRecommendation{{Reason: "a"}},
		UserA: UserProfile{
			RawData:   RawDataBundle{SourceGitHub: Payload{"repos": 1}},
			Reconnect: []string{SourceSpotify},
		},
	}
	snap := s.Snapshot()
	snap.Trace = append(snap.Trace[:0], "mutated")
	snap.Venues[0].Reason = "b"
	snap.UserA.RawData[SourceLetterboxd] = Payload{}
	snap.UserA.Reconnect[0] = "x"

	assert.Equal(t, []string{"ingest"}, s.Trace)
	assert.Equal(t, "a", s.Venues[0].Reason)
	assert.NotContains(t, s.UserA.RawData, SourceLetterboxd)
	assert.Equal(t, []string{SourceSpotify}, s.UserA.Reconnect)
}

func TestEmptyValues(t *testing.T) {
	assert.True(t, EmptyDossier().IsEmpty())
	assert.True(t, Dossier{}.IsEmpty())
	assert.False(t, Dossier{DataSources: []string{SourceGitHub}}.IsEmpty())

	assert.True(t, EmptyCrossRef().IsEmpty())
	assert.False(t, CrossRefResult{Citations: []string{"x"}}.IsEmpty())
}

func TestBundleSourcesSorted(t *testing.T) {
	b := RawDataBundle{SourceSpotify: {}, SourceGitHub: {}, SourceLetterboxd: {}}
	assert.Equal(t, []string{SourceGitHub, SourceLetterboxd, SourceSpotify}, b.Sources())
}

func TestCardsSkipEmptySections(t *testing.T) {
	b := CoachingBriefing{
		MatchIntel:           "intel",
		ConversationPlaybook: []string{"one", "two", "three"},
		MinefieldMap:         []string{"a", "b"},
	}
	cards := b.Cards()

	assert.Len(t, cards, 6)
	assert.Equal(t, "Match Intel", cards[0].Label)
	assert.Equal(t, "Minefield Map", cards[5].Label)
}
