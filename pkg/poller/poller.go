// Package poller drives the periodic fetch cadence: one refresh per interval,
// each outcome recorded in history, exported as metrics, and mirrored to
// Redis when configured.
package poller

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cursorwatch/cursorwatch/pkg/store"
	redisstore "github.com/cursorwatch/cursorwatch/pkg/store/redis"
	"github.com/cursorwatch/cursorwatch/pkg/transport"
	"github.com/cursorwatch/cursorwatch/pkg/usage"
)

// DefaultInterval matches the orchestrator's freshness window, so under
// normal operation the poller is the only consumer that triggers network
// activity.
const DefaultInterval = 60 * time.Second

// Summarizer is the orchestrator boundary.
type Summarizer interface {
	Refresh(ctx context.Context, force bool) usage.Result
}

// HistoryStore receives one record per tick.
type HistoryStore interface {
	AppendFetch(ctx context.Context, rec *store.FetchRecord) error
}

// Mirror publishes the latest summary for out-of-process consumers.
type Mirror interface {
	Set(ctx context.Context, env redisstore.Envelope) error
}

// Poller runs the fetch loop.
type Poller struct {
	service  Summarizer
	history  HistoryStore
	mirror   Mirror // may be nil
	interval time.Duration
	logger   zerolog.Logger
}

// New creates a poller. history may be nil to skip persistence and mirror may
// be nil to skip Redis publishing.
func New(service Summarizer, history HistoryStore, mirror Mirror, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		service:  service,
		history:  history,
		mirror:   mirror,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the polling loop and blocks until ctx is cancelled. The first
// poll runs immediately so the daemon has data before the first interval
// elapses.
func (p *Poller) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info().Dur("interval", p.interval).Msg("poller started")

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("poller stopping")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick performs one refresh and records the outcome.
func (p *Poller) tick(ctx context.Context) {
	res := p.service.Refresh(ctx, false)
	now := time.Now().UTC()

	errorKind := string(transport.KindOf(res.Err))
	rec := &store.FetchRecord{
		At:        now,
		Source:    string(res.Source),
		ErrorKind: errorKind,
		Message:   res.Message,
	}
	if s := res.Summary; s.IndividualUsage != nil && s.IndividualUsage.Overall != nil {
		overall := s.IndividualUsage.Overall
		rec.Used = overall.Used
		rec.Limit = overall.Limit
		rec.Remaining = overall.Remaining
		rec.Percentage = overall.Percentage()
	}

	if p.history != nil {
		if err := p.history.AppendFetch(ctx, rec); err != nil {
			p.logger.Error().Err(err).Msg("failed to append fetch record")
		}
	}

	p.observe(res)

	if p.mirror != nil {
		env := redisstore.Envelope{
			Summary:   res.Summary,
			Source:    string(res.Source),
			FetchedAt: now,
		}
		if err := p.mirror.Set(ctx, env); err != nil {
			p.logger.Error().Err(err).Msg("failed to mirror summary to redis")
		}
	}
}

// observe exports the outcome and the quota buckets as metrics.
func (p *Poller) observe(res usage.Result) {
	kind := string(transport.KindOf(res.Err))
	if kind == "" {
		kind = "none"
	}
	FetchTotal.WithLabelValues(string(res.Source), kind).Inc()

	setBucket("individual_overall", bucketOf(res.Summary.IndividualUsage))
	if res.Summary.TeamUsage != nil {
		setBucket("team_on_demand", res.Summary.TeamUsage.OnDemand)
		setBucket("team_pooled", res.Summary.TeamUsage.Pooled)
	}
}

func bucketOf(iu *usage.IndividualUsage) *usage.QuotaBucket {
	if iu == nil {
		return nil
	}
	return iu.Overall
}

func setBucket(name string, b *usage.QuotaBucket) {
	if b == nil {
		return
	}
	QuotaUsed.WithLabelValues(name).Set(b.Used)
	QuotaLimit.WithLabelValues(name).Set(b.Limit)
	QuotaRemaining.WithLabelValues(name).Set(b.Remaining)
	QuotaPercentage.WithLabelValues(name).Set(float64(b.Percentage()))
}
