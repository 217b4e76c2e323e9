package sources

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/starstruck-agent/internal/models"
)

var errEmptyPayload = errors.New("source returned no data")

// Result is the outcome of one fetch task. Exactly one of Payload or Err is set.
type Result struct {
	Source  string
	Payload models.Payload
	Err     error
}

func (r Result) OK() bool { return r.Err == nil }

// Report describes what the coordinator did with each configured source.
type Report struct {
	Fetched   []string          `json:"fetched"`
	Omitted   map[string]string `json:"omitted,omitempty"`
	Reconnect []string          `json:"reconnect,omitempty"`
}

// Coordinator fans out one fetch per configured source and merges the
// successes. It never returns an error: failed sources are omitted.
type Coordinator struct {
	registry *Registry
}

func NewCoordinator(registry *Registry) *Coordinator {
	return &Coordinator{registry: registry}
}

func (c *Coordinator) Registry() *Registry { return c.registry }

// Gather fetches every source with a present identifier concurrently and waits
// for all of them. The bundle only contains sources that produced non-empty,
// media-stripped data.
func (c *Coordinator) Gather(ctx context.Context, identity models.UserIdentity) (models.RawDataBundle, Report) {
	present := identity.Present()
	bundle := models.RawDataBundle{}
	report := Report{Fetched: []string{}}
	if len(present) == 0 {
		return bundle, report
	}

	names := make([]string, 0, len(present))
	for name := range present {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]Result, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = c.fetch(ctx, name, present[name])
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.OK() {
			bundle[res.Source] = res.Payload
			report.Fetched = append(report.Fetched, res.Source)
			continue
		}
		if report.Omitted == nil {
			report.Omitted = make(map[string]string)
		}
		report.Omitted[res.Source] = res.Err.Error()
		if errors.Is(res.Err, ErrAuthExpired) {
			report.Reconnect = append(report.Reconnect, res.Source)
		}
		zap.L().Warn("source omitted",
			zap.String("source", res.Source),
			zap.Error(res.Err),
		)
	}
	return bundle, report
}

// fetch is the isolation boundary for one task: errors, panics and empty data
// all become a failed Result.
func (c *Coordinator) fetch(ctx context.Context, source, identifier string) (res Result) {
	res.Source = source
	defer func() {
		if r := recover(); r != nil {
			res = Result{Source: source, Err: fmt.Errorf("adapter panic: %v", r)}
		}
	}()

	adapter, ok := c.registry.Get(source)
	if !ok {
		res.Err = fmt.Errorf("%w: %s", ErrUnknownSource, source)
		return res
	}
	payload, err := adapter.Fetch(ctx, identifier)
	if err != nil {
		res.Err = err
		return res
	}
	payload = StripMedia(payload)
	if !hasContent(payload) {
		res.Err = errEmptyPayload
		return res
	}
	res.Payload = payload
	return res
}

// hasContent reports whether any value in p is non-zero. Flags and blank
// strings left behind after media stripping do not count.
func hasContent(p models.Payload) bool {
	for _, v := range p {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Bool:
			continue
		case reflect.Slice, reflect.Map, reflect.Array:
			if rv.Len() > 0 {
				return true
			}
		case reflect.String:
			if strings.TrimSpace(rv.String()) != "" {
				return true
			}
		default:
			if !rv.IsZero() {
				return true
			}
		}
	}
	return false
}
