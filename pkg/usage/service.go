package usage

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cursorwatch/cursorwatch/pkg/config"
	"github.com/cursorwatch/cursorwatch/pkg/transport"
)

// FreshnessWindow bounds the request rate: a cached summary younger than this
// is served without any network activity.
const FreshnessWindow = 60 * time.Second

// CacheKey is the logical key of the single resident cache entry.
const CacheKey = "usage-summary"

// Source reports where a returned summary came from.
type Source string

const (
	// SourceFresh: network fetch succeeded this call.
	SourceFresh Source = "fresh"
	// SourceCache: served from a cache entry inside the freshness window.
	SourceCache Source = "cache"
	// SourceStale: fetch failed, served the previous entry regardless of age.
	SourceStale Source = "stale"
	// SourcePlaceholder: no token configured, or nothing else to serve.
	SourcePlaceholder Source = "placeholder"
)

// Result is a summary plus provenance. Err is the classified fetch error when
// Source is stale or placeholder after a failed attempt; Summary is never nil.
type Result struct {
	Summary *UsageSummary
	Source  Source
	Err     error
	Message string // user-facing framing of Err, empty on success
}

// Fetcher is the transport boundary, satisfied by *transport.Client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FetcherFactory builds a Fetcher for the credentials of one call. A fresh
// fetcher per call means a rotated token or proxy is observed immediately.
type FetcherFactory func(token, proxyURL string) Fetcher

type cacheEntry struct {
	summary *UsageSummary
	at      time.Time
}

// Service wraps the transport with the single-entry cache, the freshness
// window, and the fallback ladder fresh -> stale -> placeholder.
// GetSummary is total: it always returns a structurally valid summary and
// reports failures only through the notifier.
type Service struct {
	cfg        config.Provider
	newFetcher FetcherFactory
	baseURL    string
	logger     zerolog.Logger

	// notify receives exactly one user-facing message per failed fetch.
	notify func(string)

	now func() time.Time

	mu    sync.Mutex
	entry *cacheEntry
}

// Option configures a Service.
type Option func(*Service)

// WithBaseURL overrides the account-status host (used by tests).
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithFetcherFactory overrides transport construction (used by tests).
func WithFetcherFactory(f FetcherFactory) Option {
	return func(s *Service) { s.newFetcher = f }
}

// WithNotifier sets the sink for user-facing failure messages.
func WithNotifier(fn func(string)) Option {
	return func(s *Service) { s.notify = fn }
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time for freshness-window tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates the orchestrator. cfg is read fresh on every fetch.
func NewService(cfg config.Provider, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		baseURL: transport.DefaultBaseURL,
		logger:  zerolog.Nop(),
		notify:  func(string) {},
		now:     time.Now,
		newFetcher: func(token, proxyURL string) Fetcher {
			return transport.NewClient(token, proxyURL)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSummary returns the latest usage summary. force bypasses the freshness
// window; it never bypasses the fallback ladder.
func (s *Service) GetSummary(ctx context.Context, force bool) *UsageSummary {
	return s.Refresh(ctx, force).Summary
}

// Refresh is GetSummary with provenance, for callers that record outcomes
// (the poller, the history store, the API).
func (s *Service) Refresh(ctx context.Context, force bool) Result {
	if !force {
		s.mu.Lock()
		if s.entry != nil && s.now().Sub(s.entry.at) < FreshnessWindow {
			summary := s.entry.summary
			s.mu.Unlock()
			return Result{Summary: summary, Source: SourceCache}
		}
		s.mu.Unlock()
	}

	cfg, err := s.cfg.Load()
	if err != nil {
		s.logger.Error().Err(err).Msg("config load failed")
		return s.fallback(err)
	}

	// No token yet: stay off the network and keep the display functional.
	if cfg.AuthToken == "" {
		return Result{Summary: Placeholder(), Source: SourcePlaceholder}
	}

	summary, err := s.fetchOnce(ctx, cfg)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(transport.KindOf(err))).Msg("usage fetch failed")
		return s.fallback(err)
	}

	// Last write wins by completion order: a slower concurrent fetch that
	// finishes later overwrites this entry wholesale.
	s.mu.Lock()
	s.entry = &cacheEntry{summary: summary, at: s.now()}
	s.mu.Unlock()

	return Result{Summary: summary, Source: SourceFresh}
}

// fetchOnce runs the full pipeline (transport, parse, validate) without
// touching the cache.
func (s *Service) fetchOnce(ctx context.Context, cfg config.Config) (*UsageSummary, error) {
	fetcher := s.newFetcher(cfg.AuthToken, cfg.ProxyURL)
	body, err := fetcher.Fetch(ctx, s.baseURL+transport.UsageSummaryPath)
	if err != nil {
		return nil, err
	}
	return ParseSummary(body)
}

// fallback applies the degrade ladder after a failed attempt: previous cache
// entry at any age, else the placeholder. Emits the one notification.
func (s *Service) fallback(err error) Result {
	msg := UserMessage(err)
	s.notify(msg)

	s.mu.Lock()
	entry := s.entry
	s.mu.Unlock()

	if entry != nil {
		return Result{Summary: entry.summary, Source: SourceStale, Err: err, Message: msg}
	}
	return Result{Summary: Placeholder(), Source: SourcePlaceholder, Err: err, Message: msg}
}

// ClearCache discards the resident entry. Callers invoke this when the auth
// token changes; a value fetched under a replaced token must not be served
// as current.
func (s *Service) ClearCache() {
	s.mu.Lock()
	s.entry = nil
	s.mu.Unlock()
}

// TestConnectivity runs one forced, uncached probe through the full pipeline
// and reports whether it succeeded. It never mutates the cache.
func (s *Service) TestConnectivity(ctx context.Context) bool {
	cfg, err := s.cfg.Load()
	if err != nil || cfg.AuthToken == "" {
		return false
	}
	_, err = s.fetchOnce(ctx, cfg)
	return err == nil
}
