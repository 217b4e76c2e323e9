package profiler

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FakeGenerator returns deterministic, conformant JSON per task for offline
// runs and tests. It reads the task from the context.
type FakeGenerator struct {
	// VenueAppropriate is reported by the cross-reference task.
	VenueAppropriate bool
}

func NewFakeGenerator(venueAppropriate bool) *FakeGenerator {
	return &FakeGenerator{VenueAppropriate: venueAppropriate}
}

func (f *FakeGenerator) Generate(ctx context.Context, _ string, messages []Message) (string, error) {
	var input map[string]json.RawMessage
	if len(messages) > 0 {
		_ = json.Unmarshal([]byte(messages[len(messages)-1].Content), &input)
	}

	var obj any
	switch task := TaskFrom(ctx); task {
	case TaskProfile:
		sources := make([]string, 0, len(input))
		for k := range input {
			sources = append(sources, k)
		}
		sort.Strings(sources)
		obj = map[string]any{
			"public": map[string]any{
				"vibe":             "curious builder with a soundtrack for everything",
				"tags":             []string{"maker", "music nerd", "film buff", "night walks", "coffee"},
				"schedule_pattern": "night_owl",
			},
			"private": map[string]any{
				"summary":   "Draws on " + strings.Join(sources, ", ") + ".",
				"traits":    []string{"curious", "wry", "loyal"},
				"interests": []string{"open source", "ambient music", "slow cinema", "bouldering", "ramen"},
				"deep_cuts": []string{"keeps a film diary", "collects synth patches"},
			},
		}
	case TaskCrossRef:
		obj = map[string]any{
			"shared": []map[string]string{
				{"signal": "late-night energy", "detail": "both active after 22:00", "source": "github"},
				{"signal": "electronic music", "detail": "overlapping top genres", "source": "spotify"},
			},
			"complementary": []map[string]string{
				{"signal": "builder meets critic", "detail": "one ships, one reviews", "source": "letterboxd"},
			},
			"tension_points": []map[string]string{
				{"signal": "pace", "detail": "different weekend rhythms", "source": "spotify"},
			},
			"citations": []string{
				"user_a commits mostly at 23:00",
				"both list electronica in top genres",
				"user_b rated 12 films this month",
			},
			"venue_appropriate": f.VenueAppropriate,
		}
	case TaskBrainstorm:
		obj = map[string]any{"ideas": []map[string]string{
			{"name": "Listening bar", "search_query": "vinyl listening bar"},
			{"name": "Late cinema", "search_query": "independent cinema late screening"},
			{"name": "Night market", "search_query": "night food market"},
		}}
	case TaskRank:
		var cands []struct {
			Name string `json:"name"`
		}
		_ = json.Unmarshal(input["candidates"], &cands)
		picks := []map[string]any{}
		for i, c := range cands {
			if i == 3 {
				break
			}
			picks = append(picks, map[string]any{
				"name":            c.Name,
				"reason":          "open late and suits both",
				"tips":            []string{"book ahead"},
				"relevance_score": 0.9 - float64(i)*0.1,
			})
		}
		obj = map[string]any{"venues": picks}
	case TaskCoaching:
		obj = map[string]any{
			"match_intel":           "They light up talking about what they are building.",
			"conversation_playbook": []string{"Ask about their latest side project", "Trade album picks", "Compare favourite late screenings"},
			"minefield_map":         []string{"Do not rush plans", "Skip the hot takes on their favourite director"},
			"venue_cheat_sheet":     "Arrive early and grab the seats near the speakers.",
			"vibe_calibration":      "Low-key and playful.",
		}
	default:
		return "", fmt.Errorf("fake generator: unknown task %q", task)
	}

	buf, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
