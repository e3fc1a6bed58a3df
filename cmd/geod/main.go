// Command geod serves the catalog map view's location resolution API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/geoff-maddock/arcane-city-geo/internal/adapter/catalog"
	"github.com/geoff-maddock/arcane-city-geo/internal/adapter/httpapi"
	kafkaadapter "github.com/geoff-maddock/arcane-city-geo/internal/adapter/kafka"
	"github.com/geoff-maddock/arcane-city-geo/internal/adapter/nominatim"
	"github.com/geoff-maddock/arcane-city-geo/internal/config"
	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
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

	// Discovery announcements are feature-flagged via KAFKA_BROKERS.
	var announcer domain.Announcer
	var announcerCloser *kafkaadapter.Announcer
	if cfg.KafkaEnabled {
		a := kafkaadapter.NewAnnouncer(cfg.KafkaBrokers, cfg.KafkaDiscoveryTopic, logger)
		announcer = a
		announcerCloser = a
		logger.Info("discovery announcements enabled", "topic", cfg.KafkaDiscoveryTopic)
	} else {
		logger.Info("discovery announcements disabled")
	}

	cache := geocode.NewCache()
	pacer := geocode.NewPacer(cfg.GeocodeMinInterval, nil)
	notifier := geocode.NewNotifier(store, announcer, cfg.NotifyTimeout, logger, metrics)
	resolver := geocode.NewResolver(lookup, cache, pacer, notifier, nil, logger, metrics)

	orchestrator := pipeline.NewOrchestrator(resolver, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, orchestrator, resolver, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Let in-flight coordinate write-backs land before exit.
	notifier.Wait()

	if announcerCloser != nil {
		if err := announcerCloser.Close(); err != nil {
			logger.Error("kafka announcer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
