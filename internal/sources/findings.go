package sources

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

// Finding is a short labelled fact card derived from a user's dossier and raw data.
type Finding struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Detail string `json:"detail"`
}

var (
	reFollowers = regexp.MustCompile(`([\d,.]+[KMkm]?)\s*Followers`)
	reFollowing = regexp.MustCompile(`([\d,.]+[KMkm]?)\s*Following`)
	rePosts     = regexp.MustCompile(`([\d,.]+[KMkm]?)\s*Posts`)
)

// Findings builds fact cards for every source the dossier was built from, in
// a fixed source order.
func Findings(d models.Dossier, raw models.RawDataBundle) []Finding {
	out := []Finding{}
	has := func(src string) bool { return slices.Contains(d.DataSources, src) }

	if has(models.SourceGitHub) {
		gh := raw[models.SourceGitHub]
		langs := stringList(gh, "languages")
		detail := "Active on GitHub"
		if len(langs) > 0 {
			detail = strings.Join(head(langs, 5), ", ")
		}
		out = append(out, Finding{
			Label:  "Code",
			Value:  fmt.Sprintf("%d repos", len(list(gh, "repos"))),
			Detail: detail,
		})
	}

	if has(models.SourceSpotify) {
		sp := raw[models.SourceSpotify]
		genre := "music lover"
		if g := stringList(sp, "top_genres"); len(g) > 0 {
			genre = g[0]
		}
		detail := "Genre: " + genre
		if artists := list(sp, "top_artists"); len(artists) > 0 {
			if name := str(obj(artists[0]), "name"); name != "" {
				detail = "Top: " + name
			}
		}
		out = append(out, Finding{Label: "Music", Value: genre, Detail: detail})
	}

	if has(models.SourceLetterboxd) {
		films := list(raw[models.SourceLetterboxd], "recent_films")
		var sum float64
		var rated int
		for _, f := range films {
			if r, ok := obj(f)["rating"].(float64); ok && r > 0 {
				sum += r
				rated++
			}
		}
		detail := fmt.Sprintf("%d films logged", len(films))
		if rated > 0 {
			detail = fmt.Sprintf("Avg rating: %.1f/5", sum/float64(rated))
		}
		out = append(out, Finding{
			Label:  "Film",
			Value:  fmt.Sprintf("%d films", len(films)),
			Detail: detail,
		})
	}

	if has(models.SourceInstagram) {
		bio := str(raw[models.SourceInstagram], "bio")
		detail := "Profile connected"
		if bio != "" {
			detail = truncateRunes(bio, 80, "")
		}
		value := "Instagram"
		if m := reFollowers.FindStringSubmatch(bio); m != nil {
			parts := []string{m[1] + " followers"}
			if p := rePosts.FindStringSubmatch(bio); p != nil {
				parts = append(parts, p[1]+" posts")
			}
			if f := reFollowing.FindStringSubmatch(bio); f != nil {
				parts = append(parts, "following "+f[1])
			}
			value = strings.Join(head(parts, 2), " · ")
		}
		out = append(out, Finding{Label: "Social", Value: value, Detail: detail})
	}

	if has(models.SourceLinkedIn) {
		li := raw[models.SourceLinkedIn]
		value, detail := str(li, "name"), str(li, "headline")
		if value == "" {
			value = "LinkedIn"
		}
		if detail == "" {
			detail = "Professional profile connected"
		}
		out = append(out, Finding{Label: "Career", Value: value, Detail: detail})
	}
	return out
}
