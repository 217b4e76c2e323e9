package agent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAgentCard(t *testing.T) {
	raw, err := LoadAgentCard("http://localhost:8080/")
	require.NoError(t, err)

	var card map[string]any
	require.NoError(t, json.Unmarshal(raw, &card))
	assert.Equal(t, "Starstruck", card["name"])
	assert.Equal(t, "http://localhost:8080/a2a/starstruck", card["url"])
	assert.NotEmpty(t, card["skills"])
}

func TestLoadAgentCard_NoBaseURL(t *testing.T) {
	raw, err := LoadAgentCard("")
	require.NoError(t, err)

	var card map[string]any
	require.NoError(t, json.Unmarshal(raw, &card))
	assert.Equal(t, "", card["url"])
}
