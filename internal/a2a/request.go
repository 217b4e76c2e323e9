package a2a

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/BerylCAtieno/starstruck-agent/internal/handler"
)

// extractMatch reads a match request from the message. A data part carrying
// {"user_a": ..., "user_b": ...} wins; otherwise the text parts are parsed as
// "github:ada spotify:tok location:Lagos vs letterboxd:bob".
func extractMatch(msg A2AMessage) (handler.MatchRequest, bool) {
	var texts []string
	for _, part := range msg.Parts {
		switch part.Kind {
		case "data":
			var req handler.MatchRequest
			if err := json.Unmarshal(part.Data, &req); err == nil && hasIdentity(req) {
				return req, true
			}
		case "text":
			if t := cleanText(part.Text); t != "" {
				texts = append(texts, t)
			}
		}
	}
	return parseMatchText(strings.Join(texts, " "))
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "<p>", "")
	s = strings.ReplaceAll(s, "</p>", "")
	return strings.TrimSpace(s)
}

var (
	reVersus  = regexp.MustCompile(`(?i)\s+vs\.?\s+`)
	reNoVenue = regexp.MustCompile(`(?i)\bno\s+venues?\b`)
)

func parseMatchText(text string) (handler.MatchRequest, bool) {
	loc := reVersus.FindStringIndex(text)
	if loc == nil {
		return handler.MatchRequest{}, false
	}
	req := handler.MatchRequest{
		UserA: parseSide(text[:loc[0]]),
		UserB: parseSide(text[loc[1]:]),
	}
	if reNoVenue.MatchString(text) {
		off := false
		req.IncludeVenue = &off
	}
	return req, hasIdentity(req)
}

func parseSide(s string) handler.UserInput {
	in := handler.UserInput{Identifiers: map[string]string{}}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\n' || r == '\t' })
	for _, f := range fields {
		key, val, ok := strings.Cut(f, ":")
		if !ok || val == "" {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "location" {
			in.Location = val
			continue
		}
		in.Identifiers[key] = strings.TrimSpace(val)
	}
	return in
}

func hasIdentity(req handler.MatchRequest) bool {
	return len(req.UserA.Identity().Present()) > 0 || len(req.UserB.Identity().Present()) > 0
}
