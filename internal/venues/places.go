// Package venues finds real-world places for brainstormed date ideas.
package venues

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const fieldMask = "places.displayName,places.formattedAddress,places.rating," +
	"places.priceLevel,places.types,places.regularOpeningHours"

// Searcher runs a free-text venue search biased towards a location. Results
// keep the provider's order.
type Searcher interface {
	Search(ctx context.Context, query, locationBias string) ([]models.VenueCandidate, error)
}

type searchTextRequest struct {
	TextQuery string `json:"textQuery"`
}

type searchTextResponse struct {
	Places []struct {
		DisplayName struct {
			Text string `json:"text"`
		} `json:"displayName"`
		FormattedAddress    string   `json:"formattedAddress"`
		Rating              *float64 `json:"rating"`
		PriceLevel          string   `json:"priceLevel"`
		Types               []string `json:"types"`
		RegularOpeningHours struct {
			WeekdayDescriptions []string `json:"weekdayDescriptions"`
		} `json:"regularOpeningHours"`
	} `json:"places"`
}

// PlacesClient calls the Google Places "searchText" endpoint. Without an API
// key it answers every query with a single mock candidate so the venue stage
// still runs in development.
type PlacesClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPlacesClient(apiKey, baseURL string, timeout time.Duration) *PlacesClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PlacesClient{apiKey: apiKey, baseURL: baseURL, client: &http.Client{Timeout: timeout}}
}

func (c *PlacesClient) Search(ctx context.Context, query, locationBias string) ([]models.VenueCandidate, error) {
	if c.apiKey == "" {
		zap.L().Warn("no places API key configured, returning mock venue", zap.String("query", query))
		return []models.VenueCandidate{mockCandidate(query)}, nil
	}

	text := query
	if locationBias != "" {
		text = fmt.Sprintf("%s in %s", query, locationBias)
	}
	body, err := json.Marshal(searchTextRequest{TextQuery: text})
	if err != nil {
		return nil, fmt.Errorf("encode places request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build places request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("places search: status %d: %s", resp.StatusCode, string(snippet))
	}

	var out searchTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	candidates := make([]models.VenueCandidate, 0, len(out.Places))
	for _, p := range out.Places {
		name := p.DisplayName.Text
		if name == "" {
			name = "Unknown Venue"
		}
		types := p.Types
		if types == nil {
			types = []string{}
		}
		candidates = append(candidates, models.VenueCandidate{
			Name:       name,
			Address:    p.FormattedAddress,
			Rating:     p.Rating,
			PriceLevel: p.PriceLevel,
			Hours:      p.RegularOpeningHours.WeekdayDescriptions,
			Types:      types,
		})
	}
	return candidates, nil
}

func mockCandidate(query string) models.VenueCandidate {
	rating := 4.5
	return models.VenueCandidate{
		Name:    "Mock " + query,
		Address: "123 Discovery Way",
		Rating:  &rating,
		Types:   []string{},
	}
}
