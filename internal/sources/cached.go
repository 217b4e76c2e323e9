package sources

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

// Cached memoizes successful, non-empty fetches of the wrapped adapter for a
// short TTL, so a source connected through /api/connect is not fetched again
// when the same identifier is analyzed moments later. Failures are never cached.
type Cached struct {
	next  Adapter
	cache *expirable.LRU[string, models.Payload]
}

func NewCached(next Adapter, size int, ttl time.Duration) *Cached {
	if size <= 0 {
		size = 128
	}
	return &Cached{
		next:  next,
		cache: expirable.NewLRU[string, models.Payload](size, nil, ttl),
	}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Fetch(ctx context.Context, identifier string) (models.Payload, error) {
	if p, ok := c.cache.Get(identifier); ok {
		return p, nil
	}
	p, err := c.next.Fetch(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(p) > 0 {
		c.cache.Add(identifier, p)
	}
	return p, nil
}

// WithCache wraps every adapter in a Cached decorator. A non-positive ttl
// returns the adapters unchanged.
func WithCache(size int, ttl time.Duration, adapters ...Adapter) []Adapter {
	if ttl <= 0 {
		return adapters
	}
	out := make([]Adapter, len(adapters))
	for i, a := range adapters {
		out[i] = NewCached(a, size, ttl)
	}
	return out
}
