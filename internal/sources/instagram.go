package sources

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

var instagramLoginKeywords = []string{"Login", "login", "Log in", "accounts/login", "Log into"}

// Instagram scrapes a public profile's bio and a viewport screenshot.
type Instagram struct {
	scraper PageScraper
	baseURL string
}

func NewInstagram(scraper PageScraper) *Instagram {
	return &Instagram{scraper: scraper, baseURL: "https://www.instagram.com"}
}

func (i *Instagram) Name() string { return models.SourceInstagram }

func (i *Instagram) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	url := i.baseURL + "/" + cleanHandle(identifier) + "/"
	snap, err := i.scraper.Snapshot(ctx, url, SnapshotRequest{
		Text:       map[string]string{"bio": "header section"},
		Meta:       map[string]string{"description": `meta[property="og:description"]`},
		Screenshot: true,
	})
	if err != nil {
		return nil, err
	}
	return extractInstagram(snap), nil
}

// extractInstagram distrusts page content behind a login wall; the og
// description may still carry follower counts and is used as a fallback bio.
func extractInstagram(snap PageSnapshot) models.Payload {
	walled := strings.Contains(snap.FinalURL, "accounts/login")
	for _, kw := range instagramLoginKeywords {
		if strings.Contains(snap.Title, kw) {
			walled = true
			break
		}
	}

	bio := strings.TrimSpace(snap.Text["bio"])
	meta := strings.TrimSpace(snap.Meta["description"])
	if walled {
		bio = ""
		if meta != "" && !strings.Contains(strings.ToLower(meta), "log in") {
			bio = meta
		}
	} else if bio == "" {
		bio = meta
	}

	screenshot := ""
	if len(snap.Screenshot) > 0 && !walled {
		screenshot = base64.StdEncoding.EncodeToString(snap.Screenshot)
	}

	// A screenshot alone is stripped before analysis and carries no text.
	if bio == "" {
		return models.Payload{}
	}
	return models.Payload{
		"bio":            bio,
		"screenshot_b64": screenshot,
		"login_wall":     walled,
	}
}
