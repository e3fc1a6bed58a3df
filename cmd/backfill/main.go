// Command backfill geocodes every catalog location missing coordinates and
// persists the results, pacing external lookups to the service's rate
// policy. Intended for cron or one-off manual runs.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/geoff-maddock/arcane-city-geo/internal/adapter/catalog"
	"github.com/geoff-maddock/arcane-city-geo/internal/adapter/nominatim"
	"github.com/geoff-maddock/arcane-city-geo/internal/config"
	"github.com/geoff-maddock/arcane-city-geo/internal/geocode"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
	"github.com/geoff-maddock/arcane-city-geo/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.CatalogTimeout, logger)
	lookup := nominatim.NewClient(cfg.NominatimBaseURL, cfg.NominatimUserAgent, cfg.NominatimTimeout, logger, metrics)

	cache := geocode.NewCache()
	pacer := geocode.NewPacer(cfg.GeocodeMinInterval, nil)
	// No notifier: the backfill persists synchronously itself.
	resolver := geocode.NewResolver(lookup, cache, pacer, nil, nil, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := pipeline.NewBackfill(store, resolver, logger)
	stats, err := b.Run(ctx)
	if err != nil {
		logger.Error("backfill failed", "error", err,
			"scanned", stats.Scanned, "persisted", stats.Persisted, "skipped", stats.Skipped)
		os.Exit(1)
	}
}
