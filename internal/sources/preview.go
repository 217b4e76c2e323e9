package sources

import (
	"fmt"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

const limitedData = "Connected (limited data)"

// Preview renders the one-line summary shown after a source is connected.
func Preview(source string, p models.Payload) string {
	switch source {
	case models.SourceGitHub:
		repos := list(p, "repos")
		langs := stringList(p, "languages")
		if len(repos) == 0 && len(langs) == 0 {
			return limitedData
		}
		var parts []string
		if len(repos) > 0 {
			parts = append(parts, fmt.Sprintf("%d repos", len(repos)))
		}
		if len(langs) > 0 {
			parts = append(parts, strings.Join(head(langs, 4), ", "))
		}
		return strings.Join(parts, " · ")
	case models.SourceLetterboxd:
		films := list(p, "recent_films")
		if len(films) == 0 {
			return limitedData
		}
		return fmt.Sprintf("%d films logged", len(films))
	case models.SourceSpotify:
		artists := list(p, "top_artists")
		if len(artists) == 0 {
			return limitedData
		}
		name := str(obj(artists[0]), "name")
		if name == "" {
			name = "Unknown"
		}
		return "Top artist: " + name
	case models.SourceInstagram:
		bio := str(p, "bio")
		if bio == "" {
			if flag(p, "login_wall") {
				return "Profile connected (limited)"
			}
			return "Profile connected"
		}
		return truncateRunes(bio, 50, "…")
	case models.SourceLinkedIn:
		if flag(p, "login_wall") {
			return "Profile connected (limited)"
		}
		name, headline := str(p, "name"), str(p, "headline")
		switch {
		case headline != "" && name != "":
			return name + " · " + headline
		case headline != "":
			return headline
		case name != "":
			return name
		}
		return "Profile connected"
	}
	return "Connected"
}

func list(p map[string]any, key string) []any {
	v, _ := p[key].([]any)
	return v
}

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func str(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func flag(p map[string]any, key string) bool {
	b, _ := p[key].(bool)
	return b
}

func stringList(p map[string]any, key string) []string {
	var out []string
	for _, v := range list(p, key) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func head(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func truncateRunes(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}
