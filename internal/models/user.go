package models

import (
	"sort"
	"strings"
)

// Source names known to the ingest layer.
const (
	SourceGitHub     = "github"
	SourceSpotify    = "spotify"
	SourceLetterboxd = "letterboxd"
	SourceInstagram  = "instagram"
	SourceLinkedIn   = "linkedin"
)

// Payload is one source's text-analyzable data, JSON-shaped.
type Payload map[string]any

// RawDataBundle maps a source name to its payload. A source is present only
// when it produced non-empty data.
type RawDataBundle map[string]Payload

// Sources returns the bundle's keys in sorted order.
func (b RawDataBundle) Sources() []string {
	out := make([]string, 0, len(b))
	for k := range b {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UserIdentity maps a source name to an optional identifier. A nil or blank
// identifier means the source is not fetched.
type UserIdentity struct {
	Identifiers map[string]*string `json:"identifiers"`
	Location    string             `json:"location,omitempty"`
}

// NewIdentity builds an identity from plain strings; empty values are dropped.
func NewIdentity(ids map[string]string, location string) UserIdentity {
	out := UserIdentity{Identifiers: make(map[string]*string, len(ids)), Location: location}
	for k, v := range ids {
		if v == "" {
			out.Identifiers[k] = nil
			continue
		}
		v := v
		out.Identifiers[k] = &v
	}
	return out
}

// Present returns the sources with a usable identifier.
func (u UserIdentity) Present() map[string]string {
	out := make(map[string]string, len(u.Identifiers))
	for src, id := range u.Identifiers {
		if id == nil {
			continue
		}
		v := strings.TrimSpace(*id)
		if v == "" {
			continue
		}
		out[src] = v
	}
	return out
}

// Clone copies the identity so a run never shares it with the caller.
func (u UserIdentity) Clone() UserIdentity {
	out := UserIdentity{Location: u.Location}
	if u.Identifiers != nil {
		out.Identifiers = make(map[string]*string, len(u.Identifiers))
		for k, v := range u.Identifiers {
			if v == nil {
				out.Identifiers[k] = nil
				continue
			}
			s := *v
			out.Identifiers[k] = &s
		}
	}
	return out
}

type UserProfile struct {
	Identity  UserIdentity  `json:"identity"`
	RawData   RawDataBundle `json:"raw_data"`
	Dossier   Dossier       `json:"dossier"`
	Reconnect []string      `json:"reconnect,omitempty"`
}
