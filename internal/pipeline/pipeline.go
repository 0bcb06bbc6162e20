// Package pipeline orchestrates one ingestion run: it drives the enabled
// source adapters in configured order, consults the response cache per
// record, and merges normalized entities into one dataset.
//
// The merge is plain concatenation. Cross-source identity reconciliation is
// deliberately not attempted; matches stay keyed by (source, id).
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rmaguire/valorant-data/internal/cache"
	"github.com/rmaguire/valorant-data/internal/source"
)

// Config holds orchestration settings.
type Config struct {
	// Parallel fetches sources concurrently. Output ordering is unchanged:
	// per-source results are concatenated in configured adapter order.
	Parallel bool

	// MinMatchDate drops matches whose start time is known and earlier.
	// The zero value disables the filter.
	MinMatchDate time.Time
}

// SourceReport summarizes one adapter's contribution to a run.
type SourceReport struct {
	Source     string
	Fetched    int // raw records returned by FetchPage
	Normalized int // records that produced entities
	Skipped    int // records skipped with a reason
	Dropped    int // records dropped by the min-date filter
	CacheHits  int
	Failed     bool // page-level fetch failure, treated as empty
}

// Result is the merged output of one run.
type Result struct {
	RunID   string
	Data    source.Entities
	Reports []SourceReport
}

// Orchestrator drives a set of source adapters through one run.
type Orchestrator struct {
	cfg      Config
	adapters []source.Adapter
	store    *cache.Store
	logger   *slog.Logger
}

// New creates an Orchestrator. Adapters run in slice order. A nil store
// disables caching.
func New(cfg Config, adapters []source.Adapter, store *cache.Store, logger *slog.Logger) *Orchestrator {
	if store == nil {
		store = cache.Disabled()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:      cfg,
		adapters: adapters,
		store:    store,
		logger:   logger,
	}
}

// Run executes one ingestion pass. A failing or empty source never prevents
// the others from running; Run only returns an error when the context is
// cancelled.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:   uuid.NewString(),
		Reports: make([]SourceReport, len(o.adapters)),
	}
	start := time.Now()

	perSource := make([]source.Entities, len(o.adapters))

	if o.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, a := range o.adapters {
			g.Go(func() error {
				ents, report := o.runSource(gctx, a)
				perSource[i] = ents
				result.Reports[i] = report
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, a := range o.adapters {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			perSource[i], result.Reports[i] = o.runSource(ctx, a)
		}
	}

	for _, ents := range perSource {
		result.Data.Append(ents)
	}

	o.logger.Info("run complete",
		"run_id", result.RunID,
		"sources", len(o.adapters),
		"matches", len(result.Data.Matches),
		"maps", len(result.Data.Maps),
		"rounds", len(result.Data.Rounds),
		"teams", len(result.Data.Teams),
		"players", len(result.Data.Players),
		"player_round_stats", len(result.Data.Stats),
		"duration", time.Since(start),
	)

	return result, nil
}

// runSource fetches and normalizes one adapter's page.
func (o *Orchestrator) runSource(ctx context.Context, a source.Adapter) (source.Entities, SourceReport) {
	report := SourceReport{Source: a.Name()}
	var out source.Entities

	page, err := a.FetchPage(ctx)
	if err != nil {
		o.logger.Warn("source fetch failed, treating page as empty",
			"source", a.Name(),
			"error", err,
		)
		report.Failed = true
		return out, report
	}
	report.Fetched = len(page)

	for _, raw := range page {
		effective := raw

		key := a.RecordKey(raw)
		if key != "" {
			cached, hit, cacheErr := o.store.GetOrStore(cache.Key(a.Name(), key), func() ([]byte, error) {
				return raw, nil
			})
			if cacheErr != nil {
				o.logger.Warn("cache lookup failed, using fetched record",
					"source", a.Name(),
					"record_id", key,
					"error", cacheErr,
				)
			} else {
				effective = cached
				if hit {
					report.CacheHits++
				}
			}
		}

		res := a.Normalize(effective)
		if res.Skipped {
			report.Skipped++
			o.logger.Debug("record skipped",
				"source", a.Name(),
				"record_id", key,
				"reason", res.Reason,
			)
			continue
		}

		if o.dropByDate(res.Entities) {
			report.Dropped++
			continue
		}

		report.Normalized++
		out.Append(res.Entities)
	}

	o.logger.Info("source complete",
		"source", a.Name(),
		"fetched", report.Fetched,
		"normalized", report.Normalized,
		"skipped", report.Skipped,
		"dropped", report.Dropped,
		"cache_hits", report.CacheHits,
	)

	return out, report
}

// dropByDate reports whether every match in a record's entities has a known
// start time earlier than the configured minimum. Matches with unknown start
// times are kept.
func (o *Orchestrator) dropByDate(e source.Entities) bool {
	if o.cfg.MinMatchDate.IsZero() || len(e.Matches) == 0 {
		return false
	}
	for _, m := range e.Matches {
		if m.StartTime == nil || !m.StartTime.Before(o.cfg.MinMatchDate) {
			return false
		}
	}
	return true
}
