package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmaguire/valorant-data/internal/cache"
	"github.com/rmaguire/valorant-data/internal/config"
	"github.com/rmaguire/valorant-data/internal/enrich"
	"github.com/rmaguire/valorant-data/internal/export"
	"github.com/rmaguire/valorant-data/internal/fetch"
	"github.com/rmaguire/valorant-data/internal/pipeline"
	"github.com/rmaguire/valorant-data/internal/source"
	"github.com/rmaguire/valorant-data/internal/source/grid"
	"github.com/rmaguire/valorant-data/internal/source/vlr"
	"github.com/rmaguire/valorant-data/internal/validate"
	"github.com/rmaguire/valorant-data/internal/version"
	"github.com/rmaguire/valorant-data/internal/warehouse"
)

func main() {
	configPath := flag.String("config", "configs/ingest.yaml", "path to config file")
	flag.Parse()

	// Load configuration before anything else; a bad config must fail the
	// run before any network request is made.
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Logging.Level),
	}))
	slog.SetDefault(logger)

	logger.Info("starting ingest",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"sources", cfg.Sources.Enabled,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// Response cache
	store := cache.Disabled()
	if cfg.CachingEnabled() {
		var err error
		store, err = cache.New(cfg.Cache.Path)
		if err != nil {
			return err
		}
	}

	// One HTTP client per enabled source, sharing a rate limiter.
	limiter := fetch.NewLimiter(cfg.Rates)
	adapters := buildAdapters(cfg, limiter, logger)
	if len(adapters) == 0 {
		logger.Warn("no sources enabled, nothing to do")
		return nil
	}

	// Validation has already checked the date format.
	var minDate time.Time
	if cfg.Fetch.MinMatchDate != "" {
		t, err := time.Parse("2006-01-02", cfg.Fetch.MinMatchDate)
		if err != nil {
			return err
		}
		minDate = t
	}

	orch := pipeline.New(pipeline.Config{
		Parallel:     cfg.Pipeline.Parallel,
		MinMatchDate: minDate,
	}, adapters, store, logger)

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}
	for _, r := range result.Reports {
		logger.Info("source complete",
			"source", r.Source,
			"fetched", r.Fetched,
			"normalized", r.Normalized,
			"skipped", r.Skipped,
			"dropped", r.Dropped,
			"cache_hits", r.CacheHits,
			"failed", r.Failed,
		)
	}

	// Derived stat columns
	result.Data.Stats = enrich.New(cfg.Features, logger).PlayerRoundStats(result.Data.Stats)

	// Quality pass
	data, reports := validate.New(logger).Dataset(result.Data)
	for _, r := range reports {
		logger.Info("table validated", "table", r.Table, "rows", r.Rows, "duplicates", r.Duplicates)
	}

	// Flat-file export
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return err
	}
	paths, err := export.New(cfg.Export.Path, format, logger).Write(data)
	if err != nil {
		return err
	}
	logger.Info("export complete", "run_id", result.RunID, "files", len(paths))

	// Optional warehouse load
	if cfg.Warehouse.Enabled {
		pool, err := warehouse.Connect(ctx, cfg.Warehouse.DB)
		if err != nil {
			return err
		}
		defer pool.Close()

		// A load failure does not invalidate the files already exported.
		if err := warehouse.NewLoader(pool, logger).Load(ctx, result.RunID, data); err != nil {
			logger.Error("warehouse load failed", "error", err)
		}
	}

	logTotals(logger, data)
	return nil
}

// buildAdapters constructs an adapter for each enabled source, in the order
// configured.
func buildAdapters(cfg *config.Config, limiter *fetch.Limiter, logger *slog.Logger) []source.Adapter {
	var adapters []source.Adapter
	for _, name := range cfg.Sources.Enabled {
		opts := []fetch.Option{
			fetch.WithTimeout(cfg.API.Timeout),
			fetch.WithRetries(cfg.API.RetryAttempts, cfg.API.RetryBackoff),
			fetch.WithLimiter(limiter),
			fetch.WithLogger(logger),
		}
		switch name {
		case vlr.Name:
			client := fetch.NewClient(cfg.Sources.VLRURL, cfg.Sources.APIKeys[name], name, opts...)
			adapters = append(adapters, vlr.New(client, cfg.Fetch.MaxMatches, logger))
		case grid.Name:
			client := fetch.NewClient(cfg.Sources.GridURL, cfg.Sources.APIKeys[name], name, opts...)
			adapters = append(adapters, grid.New(client, cfg.Fetch.MaxMatches, logger))
		}
	}
	return adapters
}

func logTotals(logger *slog.Logger, data source.Entities) {
	logger.Info("ingest complete",
		"matches", len(data.Matches),
		"teams", len(data.Teams),
		"players", len(data.Players),
		"maps", len(data.Maps),
		"rounds", len(data.Rounds),
		"player_round_stats", len(data.Stats),
	)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
