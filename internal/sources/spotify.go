package sources

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const maxTopGenres = 20

type SpotifyArtist struct {
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Popularity int      `json:"popularity"`
}

type SpotifyTrack struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

type spotifyData struct {
	TopArtists     []SpotifyArtist `json:"top_artists"`
	TopGenres      []string        `json:"top_genres"`
	TopTracks      []SpotifyTrack  `json:"top_tracks"`
	ListeningHours []int           `json:"listening_hours"`
}

type spArtists struct {
	Items []struct {
		Name       string   `json:"name"`
		Genres     []string `json:"genres"`
		Popularity int      `json:"popularity"`
	} `json:"items"`
}

type spTracks struct {
	Items []struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
	} `json:"items"`
}

type spRecent struct {
	Items []struct {
		PlayedAt time.Time `json:"played_at"`
	} `json:"items"`
}

// Spotify reads listening history. The identifier is the user's OAuth access
// token; a rejected token surfaces as ErrAuthExpired.
type Spotify struct {
	baseURL string
	client  *http.Client
}

func NewSpotify(baseURL string, timeout time.Duration) *Spotify {
	return &Spotify{baseURL: strings.TrimRight(baseURL, "/"), client: newHTTPClient(timeout)}
}

func (s *Spotify) Name() string { return models.SourceSpotify }

func (s *Spotify) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	header := http.Header{"Authorization": []string{"Bearer " + strings.TrimSpace(identifier)}}

	var artists spArtists
	var tracks spTracks
	var recent spRecent
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return getJSON(egCtx, s.client, s.baseURL+"/me/top/artists?limit=50&time_range=medium_term", header, &artists)
	})
	eg.Go(func() error {
		return getJSON(egCtx, s.client, s.baseURL+"/me/top/tracks?limit=50&time_range=medium_term", header, &tracks)
	})
	eg.Go(func() error {
		return getJSON(egCtx, s.client, s.baseURL+"/me/player/recently-played?limit=50", header, &recent)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	data := spotifyData{
		TopArtists:     extractArtists(artists),
		TopGenres:      extractTopGenres(artists),
		TopTracks:      extractTracks(tracks),
		ListeningHours: extractListeningHours(recent),
	}
	if len(data.TopArtists) == 0 && len(data.TopTracks) == 0 && len(data.ListeningHours) == 0 {
		return models.Payload{}, nil
	}
	return toPayload(data)
}

func extractArtists(in spArtists) []SpotifyArtist {
	out := make([]SpotifyArtist, 0, len(in.Items))
	for _, a := range in.Items {
		genres := a.Genres
		if genres == nil {
			genres = []string{}
		}
		out = append(out, SpotifyArtist{Name: a.Name, Genres: genres, Popularity: a.Popularity})
	}
	return out
}

// extractTopGenres ranks genres by how many top artists carry them, ties broken
// by first appearance, capped at maxTopGenres.
func extractTopGenres(in spArtists) []string {
	counts := make(map[string]int)
	order := []string{}
	for _, a := range in.Items {
		for _, g := range a.Genres {
			if counts[g] == 0 {
				order = append(order, g)
			}
			counts[g]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > maxTopGenres {
		order = order[:maxTopGenres]
	}
	return order
}

func extractTracks(in spTracks) []SpotifyTrack {
	out := make([]SpotifyTrack, 0, len(in.Items))
	for _, t := range in.Items {
		artist := ""
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		out = append(out, SpotifyTrack{Name: t.Name, Artist: artist})
	}
	return out
}

func extractListeningHours(in spRecent) []int {
	hours := []int{}
	for _, item := range in.Items {
		if item.PlayedAt.IsZero() {
			continue
		}
		hours = append(hours, item.PlayedAt.UTC().Hour())
	}
	return hours
}
