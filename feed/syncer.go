package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"security-assistant/config"
	"security-assistant/vetting"
)

const maxFeedSize = 50 * 1024 * 1024 // 50 MB

var (
	errNotModified = errors.New("not modified")
	errTruncated   = errors.New("feed exceeds maximum size, skipping to avoid partial data")
)

// Observer receives sync outcomes.
type Observer interface {
	ObserveFeedSync(feed string, ok bool)
	SetBlocklistSize(n int)
}

// Syncer rebuilds the blocklist from its sources and installs it in a Store.
// A source that fails keeps contributing its last successfully loaded domains.
type Syncer struct {
	store    *Store
	seed     []string
	feeds    []config.FeedEntry
	locals   []string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger
	observer Observer

	// mu serializes syncs and guards the caches below.
	mu       sync.Mutex
	etags    map[string]string
	lastGood map[string][]string
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithHTTPClient replaces the default feed HTTP client.
func WithHTTPClient(c *http.Client) SyncerOption {
	return func(s *Syncer) { s.client = c }
}

// WithObserver reports sync outcomes.
func WithObserver(o Observer) SyncerOption {
	return func(s *Syncer) { s.observer = o }
}

// NewSyncer creates a new syncer. Pass nil for logger to disable logging.
func NewSyncer(store *Store, cfg config.BlocklistConfig, logger *slog.Logger, opts ...SyncerOption) *Syncer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	s := &Syncer{
		store:    store,
		seed:     cfg.Domains,
		feeds:    cfg.Feeds,
		locals:   cfg.LocalLists,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   logger,
		etags:    make(map[string]string),
		lastGood: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run syncs immediately and then on every interval until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) {
	if err := s.SyncOnce(ctx); err != nil {
		s.logger.Warn("blocklist sync incomplete", "error", err)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SyncOnce(ctx); err != nil {
				s.logger.Warn("blocklist sync incomplete", "error", err)
			}
		}
	}
}

type fetchResult struct {
	domains []string
	etag    string
	err     error
}

// SyncOnce fetches every feed concurrently, reads the local lists, merges
// them with the seed domains and replaces the store contents. The returned
// error joins the per-source failures; the store is updated regardless.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]fetchResult, len(s.feeds))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range s.feeds {
		etag := s.etags[f.Name]
		g.Go(func() error {
			domains, newETag, err := s.fetchFeed(gctx, f, etag)
			results[i] = fetchResult{domains: domains, etag: newETag, err: err}
			return nil
		})
	}
	_ = g.Wait()

	merged := vetting.NewDomainSet(s.seed...)
	var errs []error

	for i, f := range s.feeds {
		res := results[i]
		domains := res.domains
		switch {
		case res.err == nil:
			s.lastGood[f.Name] = domains
			if res.etag != "" {
				s.etags[f.Name] = res.etag
			}
			s.logger.Info("blocklist feed synced", "feed", f.Name, "domains", len(domains))
			s.observe(f.Name, true)
		case errors.Is(res.err, errNotModified):
			s.logger.Debug("blocklist feed not modified", "feed", f.Name)
			domains = s.lastGood[f.Name]
			s.observe(f.Name, true)
		default:
			s.logger.Warn("blocklist feed fetch failed, using cached data",
				"feed", f.Name, "url", sanitizeURL(f.URL), "error", res.err)
			domains = s.lastGood[f.Name]
			errs = append(errs, fmt.Errorf("feed %s: %w", f.Name, res.err))
			s.observe(f.Name, false)
		}
		addAll(merged, domains)
	}

	for _, path := range s.locals {
		key := "local:" + path
		domains, err := parseLocalFile(path)
		if err != nil {
			s.logger.Warn("local blocklist failed, using cached data", "path", path, "error", err)
			domains = s.lastGood[key]
			errs = append(errs, fmt.Errorf("local list %s: %w", path, err))
			s.observe(key, false)
		} else {
			s.lastGood[key] = domains
			s.observe(key, true)
		}
		addAll(merged, domains)
	}

	s.store.Replace(merged)
	if s.observer != nil {
		s.observer.SetBlocklistSize(merged.Len())
	}
	return errors.Join(errs...)
}

func (s *Syncer) observe(name string, ok bool) {
	if s.observer != nil {
		s.observer.ObserveFeedSync(name, ok)
	}
}

func (s *Syncer) fetchFeed(ctx context.Context, feed config.FeedEntry, etag string) ([]string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, "", err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, "", errNotModified
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	// Read one byte past the limit to tell "exactly at limit" from "truncated".
	lr := &io.LimitedReader{R: resp.Body, N: maxFeedSize + 1}
	domains, err := ParserForFormat(feed.Format).Parse(lr)
	if err != nil {
		return nil, "", err
	}
	if lr.N == 0 {
		return nil, "", errTruncated
	}
	return domains, resp.Header.Get("ETag"), nil
}

func parseLocalFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return (&DomainListParser{}).Parse(f)
}

func addAll(set vetting.DomainSet, domains []string) {
	for _, d := range domains {
		set[d] = struct{}{}
	}
}

// sanitizeURL keeps only scheme and host, since feed paths can embed tokens.
func sanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	return u.Scheme + "://" + u.Host
}
