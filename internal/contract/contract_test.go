package contract

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type briefing struct {
	MatchIntel string   `json:"match_intel"`
	Playbook   []string `json:"conversation_playbook" validate:"len=3"`
}

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n{\"a\":1}\n\t", want: `{"a":1}`},
		{name: "json fence", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "trailing chatter after fence", in: "```json\n{\"a\":1}\n```\nhope this helps", want: `{"a":1}`},
		{name: "unterminated fence", in: "```json\n{\"a\":1}", want: `{"a":1}`},
		{name: "single line fence", in: "```{\"a\":1}```", want: ""},
		{name: "fence not at start is kept", in: "note ```json```", want: "note ```json```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestDecodeFencedEqualsUnfenced(t *testing.T) {
	body := `{"match_intel":"likes jazz","conversation_playbook":["a","b","c"]}`

	plain, err := Decode[briefing]("coach", body, "match_intel")
	require.NoError(t, err)

	fenced, err := Decode[briefing]("coach", "```json\n"+body+"\n```", "match_intel")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
}

func TestParseRejectsNonJSON(t *testing.T) {
	_, err := Parse("synthesize", "not json at all")
	require.Error(t, err)

	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "synthesize", v.Stage)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, in := range []string{`[1,2,3]`, `"text"`, `42`, `null`, ``, "```\n```"} {
		_, err := Parse("crossref", in)
		assert.ErrorIs(t, err, ErrContractViolation, "input %q", in)
	}
}

func TestParseMissingRequiredKeys(t *testing.T) {
	_, err := Parse("crossref", `{"shared":[]}`, "shared", "citations", "complementary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "citations, complementary")
}

func TestTakeBoolPopsKey(t *testing.T) {
	rec, err := Parse("crossref", `{"shared":[],"venue_appropriate":true}`, "shared")
	require.NoError(t, err)

	ok, err := rec.TakeBool("venue_appropriate")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, rec.Has("venue_appropriate"))

	var out map[string]any
	require.NoError(t, rec.Decode(&out))
	assert.NotContains(t, out, "venue_appropriate")
}

func TestTakeBoolMissingAndInvalid(t *testing.T) {
	rec, err := Parse("crossref", `{"flag":"yes"}`)
	require.NoError(t, err)

	v, err := rec.TakeBool("absent")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = rec.TakeBool("flag")
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestDecodeRunsValidation(t *testing.T) {
	_, err := Decode[briefing]("coach", `{"match_intel":"x","conversation_playbook":["only one"]}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContractViolation)
	assert.Contains(t, err.Error(), "validation")
}

func TestDecodeShapeMismatch(t *testing.T) {
	_, err := Decode[briefing]("coach", `{"match_intel":["not","a","string"]}`)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestField(t *testing.T) {
	rec, err := Parse("venue", `{"ideas":[{"name":"jazz","search_query":"jazz bar"}]}`, "ideas")
	require.NoError(t, err)

	var ideas []map[string]string
	require.NoError(t, rec.Field("ideas", &ideas))
	require.Len(t, ideas, 1)
	assert.Equal(t, "jazz bar", ideas[0]["search_query"])

	assert.ErrorIs(t, rec.Field("venues", &ideas), ErrContractViolation)
}

func TestExcerptKeepsRuneBoundary(t *testing.T) {
	long := "a" + strings.Repeat("é", 150)
	out := excerpt(long)

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.LessOrEqual(t, len(out), 200+len("..."))

	assert.Equal(t, "short", excerpt("  short  "))
}
