package sources

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const maxFilms = 20

var reRatingSuffix = regexp.MustCompile(`\s*-\s*★.*$`)

type LetterboxdFilm struct {
	Title  string   `json:"title"`
	Rating *float64 `json:"rating"`
	Link   string   `json:"link"`
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title        string `xml:"title"`
	Link         string `xml:"link"`
	MemberRating string `xml:"https://letterboxd.com memberRating"`
}

// Letterboxd reads a member's public diary RSS feed.
type Letterboxd struct {
	baseURL string
	client  *http.Client
}

func NewLetterboxd(baseURL string, timeout time.Duration) *Letterboxd {
	return &Letterboxd{baseURL: strings.TrimRight(baseURL, "/"), client: newHTTPClient(timeout)}
}

func (l *Letterboxd) Name() string { return models.SourceLetterboxd }

func (l *Letterboxd) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	url := fmt.Sprintf("%s/%s/rss/", l.baseURL, cleanHandle(identifier))
	body, err := get(ctx, l.client, url, nil)
	if errors.Is(err, errNotFound) {
		return models.Payload{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var feed rssFeed
	if err := xml.NewDecoder(body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decode letterboxd feed: %w", err)
	}

	films := extractFilms(feed.Channel.Items)
	if len(films) == 0 {
		return models.Payload{}, nil
	}
	return toPayload(map[string]any{"recent_films": films})
}

func extractFilms(items []rssItem) []LetterboxdFilm {
	if len(items) > maxFilms {
		items = items[:maxFilms]
	}
	films := make([]LetterboxdFilm, 0, len(items))
	for _, it := range items {
		films = append(films, LetterboxdFilm{
			Title:  strings.TrimSpace(reRatingSuffix.ReplaceAllString(it.Title, "")),
			Rating: parseRating(it),
			Link:   it.Link,
		})
	}
	return films
}

// parseRating prefers the numeric member rating and falls back to the star
// glyphs in the title ("Film, 2024 - ★★★½").
func parseRating(it rssItem) *float64 {
	if it.MemberRating != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(it.MemberRating), 64); err == nil && v > 0 {
			return &v
		}
	}
	if !strings.ContainsAny(it.Title, "★½") {
		return nil
	}
	idx := strings.LastIndex(it.Title, "-")
	if idx < 0 {
		return nil
	}
	stars := it.Title[idx+1:]
	v := float64(strings.Count(stars, "★"))
	if strings.Contains(stars, "½") {
		v += 0.5
	}
	if v <= 0 {
		return nil
	}
	return &v
}
