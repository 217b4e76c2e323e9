// Package agent holds the A2A agent card.
package agent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed agent.json
var agentCardTemplate []byte

// LoadAgentCard returns the card JSON with url pointing at the A2A endpoint of
// the deployment reachable at baseURL.
func LoadAgentCard(baseURL string) ([]byte, error) {
	var card map[string]any
	if err := json.Unmarshal(agentCardTemplate, &card); err != nil {
		return nil, fmt.Errorf("decode agent card: %w", err)
	}
	if baseURL != "" {
		card["url"] = strings.TrimRight(baseURL, "/") + "/a2a/starstruck"
	}
	out, err := json.MarshalIndent(card, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode agent card: %w", err)
	}
	return out, nil
}
