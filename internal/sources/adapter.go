// Package sources fetches per-user personal data from external services and
// assembles it into a RawDataBundle.
package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

var (
	// ErrAuthExpired means an upstream credential was rejected. It is systemic
	// for that source, not a per-call hiccup, and callers may ask the user to
	// reconnect instead of silently dropping the source.
	ErrAuthExpired = errors.New("sources: credential rejected")

	ErrUnknownSource = errors.New("sources: unknown source")
)

// Adapter fetches one source's data for an identifier. An empty payload with a
// nil error is legitimate: the identifier exists but has no data.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, identifier string) (models.Payload, error)
}

// Registry is the fixed set of adapters built at startup.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered source names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fetch runs a single adapter and applies the same boundary rules as the
// coordinator: media is stripped and empty data is reported as such.
func (r *Registry) Fetch(ctx context.Context, source, identifier string) (models.Payload, error) {
	a, ok := r.Get(source)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	payload, err := a.Fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return StripMedia(payload), nil
}

// toPayload normalizes a typed value into a JSON-shaped payload so every
// bundle entry has the same representation regardless of adapter.
func toPayload(v any) (models.Payload, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var out models.Payload
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
