package sources

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

type GitHubRepo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int    `json:"stars"`
	Language    string `json:"language"`
}

type githubData struct {
	Languages     []string     `json:"languages"`
	Repos         []GitHubRepo `json:"repos"`
	CommitHours   []int        `json:"commit_hours"`
	StarredTopics []string     `json:"starred_topics"`
}

type ghRepo struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description"`
	StargazersCount int      `json:"stargazers_count"`
	Language        *string  `json:"language"`
	Topics          []string `json:"topics"`
}

type ghEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// GitHub reads public profile activity: repositories, push times and starred topics.
type GitHub struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewGitHub(baseURL, token string, timeout time.Duration) *GitHub {
	return &GitHub{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  newHTTPClient(timeout),
	}
}

func (g *GitHub) Name() string { return models.SourceGitHub }

func (g *GitHub) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	username := cleanHandle(identifier)

	var repos, starred []ghRepo
	var events []ghEvent
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return g.list(egCtx, "/users/"+username+"/repos?per_page=100&sort=updated", &repos)
	})
	eg.Go(func() error {
		return g.list(egCtx, "/users/"+username+"/events/public?per_page=100", &events)
	})
	eg.Go(func() error {
		return g.list(egCtx, "/users/"+username+"/starred?per_page=100", &starred)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	data := githubData{
		Languages:     extractLanguages(repos),
		Repos:         extractRepos(repos),
		CommitHours:   extractCommitHours(events),
		StarredTopics: extractStarredTopics(starred),
	}
	if len(data.Repos) == 0 && len(data.CommitHours) == 0 && len(data.StarredTopics) == 0 {
		return models.Payload{}, nil
	}
	return toPayload(data)
}

// list fetches a collection endpoint; a missing user yields an empty list.
func (g *GitHub) list(ctx context.Context, path string, out any) error {
	header := http.Header{"Accept": []string{"application/vnd.github+json"}}
	if g.token != "" {
		header.Set("Authorization", "Bearer "+g.token)
	}
	err := getJSON(ctx, g.client, g.baseURL+path, header, out)
	if errors.Is(err, errNotFound) {
		return nil
	}
	return err
}

func extractLanguages(repos []ghRepo) []string {
	seen := make(map[string]bool)
	langs := []string{}
	for _, r := range repos {
		if r.Language == nil || *r.Language == "" || seen[*r.Language] {
			continue
		}
		seen[*r.Language] = true
		langs = append(langs, *r.Language)
	}
	return langs
}

func extractRepos(repos []ghRepo) []GitHubRepo {
	out := make([]GitHubRepo, 0, len(repos))
	for _, r := range repos {
		repo := GitHubRepo{Name: r.Name, Stars: r.StargazersCount}
		if r.Description != nil {
			repo.Description = *r.Description
		}
		if r.Language != nil {
			repo.Language = *r.Language
		}
		out = append(out, repo)
	}
	return out
}

func extractCommitHours(events []ghEvent) []int {
	hours := []int{}
	for _, e := range events {
		if e.Type != "PushEvent" || e.CreatedAt.IsZero() {
			continue
		}
		hours = append(hours, e.CreatedAt.UTC().Hour())
	}
	return hours
}

func extractStarredTopics(starred []ghRepo) []string {
	seen := make(map[string]bool)
	topics := []string{}
	for _, r := range starred {
		for _, t := range r.Topics {
			if seen[t] {
				continue
			}
			seen[t] = true
			topics = append(topics, t)
		}
	}
	return topics
}

func cleanHandle(identifier string) string {
	return strings.TrimPrefix(strings.TrimSpace(identifier), "@")
}
