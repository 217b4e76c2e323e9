package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const desktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SnapshotRequest names what to capture from a rendered page. Keys are caller
// labels; values are CSS selectors.
type SnapshotRequest struct {
	Text       map[string]string
	Meta       map[string]string // selector of an element whose content attribute is read
	Screenshot bool
}

// PageSnapshot is what a scraper saw. Missing elements leave empty strings.
type PageSnapshot struct {
	Title      string
	FinalURL   string
	Text       map[string]string
	Meta       map[string]string
	Screenshot []byte
}

// PageScraper renders a page and captures a snapshot.
type PageScraper interface {
	Snapshot(ctx context.Context, url string, req SnapshotRequest) (PageSnapshot, error)
}

// RodScraper drives a headless Chromium through go-rod. Each snapshot gets its
// own incognito context so scraped profiles never share cookies.
type RodScraper struct {
	controlURL string
	navTimeout time.Duration
	elTimeout  time.Duration
}

func NewRodScraper(controlURL string, navTimeout time.Duration) *RodScraper {
	if navTimeout <= 0 {
		navTimeout = 20 * time.Second
	}
	return &RodScraper{controlURL: controlURL, navTimeout: navTimeout, elTimeout: 5 * time.Second}
}

func (s *RodScraper) Snapshot(ctx context.Context, url string, req SnapshotRequest) (PageSnapshot, error) {
	snap := PageSnapshot{Text: map[string]string{}, Meta: map[string]string{}}

	controlURL := s.controlURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return snap, fmt.Errorf("launch browser: %w", err)
		}
		defer l.Cleanup()
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return snap, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	incognito, err := browser.Incognito()
	if err != nil {
		return snap, fmt.Errorf("incognito context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return snap, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: desktopUserAgent}); err != nil {
		zap.L().Debug("set user agent failed", zap.Error(err))
	}

	// Navigation errors are tolerated: login walls often abort the load but
	// still leave a readable page behind.
	if err := page.Timeout(s.navTimeout).Navigate(url); err != nil {
		zap.L().Debug("navigate failed", zap.String("url", url), zap.Error(err))
	}
	_ = page.Timeout(s.navTimeout).WaitLoad()

	if info, err := page.Info(); err == nil {
		snap.Title = info.Title
		snap.FinalURL = info.URL
	}

	for key, selector := range req.Text {
		el, err := page.Timeout(s.elTimeout).Element(selector)
		if err != nil {
			continue
		}
		if txt, err := el.Text(); err == nil {
			snap.Text[key] = txt
		}
	}
	for key, selector := range req.Meta {
		el, err := page.Timeout(s.elTimeout).Element(selector)
		if err != nil {
			continue
		}
		if v, err := el.Attribute("content"); err == nil && v != nil {
			snap.Meta[key] = *v
		}
	}
	if req.Screenshot {
		if shot, err := page.Screenshot(false, nil); err == nil {
			snap.Screenshot = shot
		}
	}
	return snap, nil
}
