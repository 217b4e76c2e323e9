package sources

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

func jsonHandler(routes map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}
}

func TestGitHubFetch(t *testing.T) {
	routes := map[string]any{
		"/users/octo/repos": []map[string]any{
			{"name": "rover", "description": "mars sim", "stargazers_count": 12, "language": "Go"},
			{"name": "dotfiles", "description": nil, "stargazers_count": 0, "language": nil},
			{"name": "parser", "stargazers_count": 3, "language": "Go"},
			{"name": "ml", "stargazers_count": 1, "language": "Python"},
		},
		"/users/octo/events/public": []map[string]any{
			{"type": "PushEvent", "created_at": "2024-03-01T23:15:00Z"},
			{"type": "WatchEvent", "created_at": "2024-03-01T10:00:00Z"},
			{"type": "PushEvent", "created_at": "2024-03-02T01:40:00Z"},
		},
		"/users/octo/starred": []map[string]any{
			{"name": "a", "topics": []string{"cli", "go"}},
			{"name": "b", "topics": []string{"go", "wasm"}},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer ghp_x" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		jsonHandler(routes)(w, r)
	}))
	t.Cleanup(srv.Close)

	p, err := NewGitHub(srv.URL, "ghp_x", time.Second).Fetch(context.Background(), "@octo")
	require.NoError(t, err)

	assert.Equal(t, []any{"Go", "Python"}, p["languages"])
	assert.Len(t, p["repos"], 4)
	assert.Equal(t, []any{float64(23), float64(1)}, p["commit_hours"])
	assert.Equal(t, []any{"cli", "go", "wasm"}, p["starred_topics"])

	repo := p["repos"].([]any)[0].(map[string]any)
	assert.Equal(t, "rover", repo["name"])
	assert.Equal(t, float64(12), repo["stars"])
}

func TestGitHubUnknownUserIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	p, err := NewGitHub(srv.URL, "", time.Second).Fetch(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestSpotifyFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		jsonHandler(map[string]any{
			"/me/top/artists": map[string]any{"items": []map[string]any{
				{"name": "Boards of Canada", "genres": []string{"idm", "electronica"}, "popularity": 60},
				{"name": "Aphex Twin", "genres": []string{"electronica", "idm", "ambient"}, "popularity": 70},
				{"name": "Burial", "genres": []string{"electronica"}, "popularity": 55},
			}},
			"/me/top/tracks": map[string]any{"items": []map[string]any{
				{"name": "Roygbiv", "artists": []map[string]any{{"name": "Boards of Canada"}}},
			}},
			"/me/player/recently-played": map[string]any{"items": []map[string]any{
				{"played_at": "2024-05-01T02:10:00Z"},
			}},
		})(w, r)
	}))
	t.Cleanup(srv.Close)

	sp := NewSpotify(srv.URL, time.Second)

	p, err := sp.Fetch(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, []any{"electronica", "idm", "ambient"}, p["top_genres"])
	assert.Equal(t, []any{float64(2)}, p["listening_hours"])
	track := p["top_tracks"].([]any)[0].(map[string]any)
	assert.Equal(t, "Boards of Canada", track["artist"])

	_, err = sp.Fetch(context.Background(), "stale")
	assert.True(t, errors.Is(err, ErrAuthExpired))
}

const letterboxdFeed = `<?xml version="1.0" encoding="utf-8"?>
<rss version="2.0" xmlns:letterboxd="https://letterboxd.com">
<channel>
  <title>Letterboxd - cine</title>
  <item>
    <title>Past Lives, 2023 - ★★★★½</title>
    <link>https://letterboxd.com/cine/film/past-lives/</link>
    <letterboxd:memberRating>4.5</letterboxd:memberRating>
  </item>
  <item>
    <title>Heat, 1995 - ★★★★</title>
    <link>https://letterboxd.com/cine/film/heat/</link>
  </item>
  <item>
    <title>Cats, 2019</title>
    <link>https://letterboxd.com/cine/film/cats/</link>
  </item>
</channel>
</rss>`

func TestLetterboxdFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cine/rss/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(letterboxdFeed))
	}))
	t.Cleanup(srv.Close)

	lb := NewLetterboxd(srv.URL, time.Second)
	p, err := lb.Fetch(context.Background(), "cine")
	require.NoError(t, err)

	films := p["recent_films"].([]any)
	require.Len(t, films, 3)
	first := films[0].(map[string]any)
	assert.Equal(t, "Past Lives, 2023", first["title"])
	assert.Equal(t, 4.5, first["rating"])
	assert.Equal(t, 4.0, films[1].(map[string]any)["rating"])
	assert.Nil(t, films[2].(map[string]any)["rating"])

	empty, err := lb.Fetch(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLetterboxdCapsFilms(t *testing.T) {
	var b strings.Builder
	b.WriteString(`<rss><channel>`)
	for i := 0; i < 30; i++ {
		b.WriteString(`<item><title>Film</title></item>`)
	}
	b.WriteString(`</channel></rss>`)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(b.String()))
	}))
	t.Cleanup(srv.Close)

	p, err := NewLetterboxd(srv.URL, time.Second).Fetch(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, p["recent_films"], maxFilms)
}

type fakeScraper struct {
	snap PageSnapshot
	err  error
	url  string
}

func (f *fakeScraper) Snapshot(_ context.Context, url string, _ SnapshotRequest) (PageSnapshot, error) {
	f.url = url
	return f.snap, f.err
}

func TestInstagramFetch(t *testing.T) {
	s := &fakeScraper{snap: PageSnapshot{
		Title:      "Jane (@jane) • Instagram photos and videos",
		FinalURL:   "https://www.instagram.com/jane/",
		Text:       map[string]string{"bio": "  film photography, bouldering  "},
		Screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
	}}
	p, err := NewInstagram(s).Fetch(context.Background(), "@jane")
	require.NoError(t, err)

	assert.Equal(t, "https://www.instagram.com/jane/", s.url)
	assert.Equal(t, "film photography, bouldering", p["bio"])
	assert.Equal(t, false, p["login_wall"])
	assert.NotEmpty(t, p["screenshot_b64"])
}

func TestInstagramLoginWall(t *testing.T) {
	walled := PageSnapshot{
		Title:    "Login • Instagram",
		FinalURL: "https://www.instagram.com/accounts/login/",
		Text:     map[string]string{"bio": "Log in to see photos"},
		Meta:     map[string]string{"description": "1,204 Followers, 310 Following, 88 Posts - See Instagram photos"},
	}
	p := extractInstagram(walled)
	assert.Equal(t, true, p["login_wall"])
	assert.Equal(t, "", p["screenshot_b64"])
	assert.Contains(t, p["bio"], "1,204 Followers")

	walled.Meta = nil
	assert.Empty(t, extractInstagram(walled))
}

func TestInstagramScreenshotWithoutBioIsEmpty(t *testing.T) {
	p := extractInstagram(PageSnapshot{
		Title:      "someone (@someone) • Instagram photos and videos",
		Screenshot: []byte{0x89, 0x50, 0x4e, 0x47},
	})
	assert.Empty(t, p)
}

func TestLinkedInExtract(t *testing.T) {
	p := extractLinkedIn(PageSnapshot{
		Title: "Jane Doe - Staff Engineer | LinkedIn",
		Text:  map[string]string{"headline": "Staff Engineer at Acme"},
		Meta:  map[string]string{"description": "Building distributed systems."},
	})
	assert.Equal(t, "Jane Doe", p["name"])
	assert.Equal(t, "Staff Engineer at Acme", p["headline"])
	assert.Equal(t, "Building distributed systems.", p["about"])

	assert.Empty(t, extractLinkedIn(PageSnapshot{Title: "Sign Up | LinkedIn", FinalURL: "https://www.linkedin.com/authwall"}))
}

func TestScraperErrorPropagates(t *testing.T) {
	s := &fakeScraper{err: errors.New("browser gone")}
	_, err := NewLinkedIn(s).Fetch(context.Background(), "jane")
	assert.EqualError(t, err, "browser gone")
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		source string
		data   models.Payload
		want   string
	}{
		{"github", "github", models.Payload{"repos": []any{1, 2, 3}, "languages": []any{"Go", "Rust", "C", "Zig", "Lua"}}, "3 repos · Go, Rust, C, Zig"},
		{"github empty", "github", models.Payload{}, "Connected (limited data)"},
		{"letterboxd", "letterboxd", models.Payload{"recent_films": []any{1, 2}}, "2 films logged"},
		{"spotify", "spotify", models.Payload{"top_artists": []any{map[string]any{"name": "Burial"}}}, "Top artist: Burial"},
		{"instagram walled", "instagram", models.Payload{"login_wall": true}, "Profile connected (limited)"},
		{"instagram long bio", "instagram", models.Payload{"bio": strings.Repeat("x", 60)}, strings.Repeat("x", 50) + "…"},
		{"linkedin", "linkedin", models.Payload{"name": "Jane", "headline": "Engineer"}, "Jane · Engineer"},
		{"linkedin headline only", "linkedin", models.Payload{"headline": "Engineer"}, "Engineer"},
		{"unknown", "myspace", models.Payload{}, "Connected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(tt.source, tt.data))
		})
	}
}

func TestFindings(t *testing.T) {
	raw := models.RawDataBundle{
		"github":     {"languages": []any{"Go"}, "repos": []any{1, 2}},
		"spotify":    {"top_genres": []any{"idm"}, "top_artists": []any{}},
		"letterboxd": {"recent_films": []any{map[string]any{"rating": 4.0}, map[string]any{"rating": 3.0}, map[string]any{"rating": nil}}},
		"instagram":  {"bio": "1.2K Followers, 300 Following, 45 Posts"},
		"linkedin":   {"headline": "Engineer"},
	}
	d := models.EmptyDossier()
	d.DataSources = []string{"github", "instagram", "letterboxd", "linkedin", "spotify"}

	got := Findings(d, raw)
	require.Len(t, got, 5)
	assert.Equal(t, Finding{Label: "Code", Value: "2 repos", Detail: "Go"}, got[0])
	assert.Equal(t, Finding{Label: "Music", Value: "idm", Detail: "Genre: idm"}, got[1])
	assert.Equal(t, Finding{Label: "Film", Value: "3 films", Detail: "Avg rating: 3.5/5"}, got[2])
	assert.Equal(t, "1.2K followers · 45 posts", got[3].Value)
	assert.Equal(t, Finding{Label: "Career", Value: "LinkedIn", Detail: "Engineer"}, got[4])

	assert.Empty(t, Findings(models.EmptyDossier(), raw))
}
