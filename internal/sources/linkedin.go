package sources

import (
	"context"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

var linkedinWallKeywords = []string{"Sign In", "Sign Up", "Login", "Join LinkedIn", "authwall"}

// LinkedIn scrapes the public profile card: name, headline and about text.
type LinkedIn struct {
	scraper PageScraper
	baseURL string
}

func NewLinkedIn(scraper PageScraper) *LinkedIn {
	return &LinkedIn{scraper: scraper, baseURL: "https://www.linkedin.com/in"}
}

func (l *LinkedIn) Name() string { return models.SourceLinkedIn }

func (l *LinkedIn) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	url := l.baseURL + "/" + cleanHandle(identifier) + "/"
	snap, err := l.scraper.Snapshot(ctx, url, SnapshotRequest{
		Text: map[string]string{
			"name":     "h1",
			"headline": ".top-card-layout__headline",
		},
		Meta: map[string]string{"description": `meta[name="description"]`},
	})
	if err != nil {
		return nil, err
	}
	return extractLinkedIn(snap), nil
}

func extractLinkedIn(snap PageSnapshot) models.Payload {
	name := strings.TrimSpace(snap.Text["name"])
	headline := strings.TrimSpace(snap.Text["headline"])
	about := strings.TrimSpace(snap.Meta["description"])

	walled := strings.Contains(snap.FinalURL, "authwall") ||
		strings.Contains(name, "Join LinkedIn") || strings.Contains(name, "Sign")
	for _, kw := range linkedinWallKeywords {
		if strings.Contains(snap.Title, kw) {
			walled = true
			break
		}
	}
	if walled {
		return models.Payload{}
	}

	// "Jane Doe - Engineer | LinkedIn"
	if name == "" {
		if before, _, ok := strings.Cut(snap.Title, " - "); ok {
			name = strings.TrimSpace(before)
		}
	}
	if name == "" && headline == "" && about == "" {
		return models.Payload{}
	}
	return models.Payload{
		"name":       name,
		"headline":   headline,
		"about":      about,
		"login_wall": false,
	}
}
