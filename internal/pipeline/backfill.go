package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
)

// BackfillStats summarizes one backfill run.
type BackfillStats struct {
	Scanned   int
	Persisted int
	Skipped   int
}

// Backfill walks every catalog location missing coordinates, resolves each
// through the shared resolver (which paces external calls), and persists
// successes synchronously. Unlike the map view's fire-and-forget write-back,
// a backfill wants to know each write landed before moving on.
type Backfill struct {
	store    domain.LocationStore
	resolver Resolver
	logger   *slog.Logger
}

// NewBackfill creates a Backfill runner. The resolver should be constructed
// without a notifier so coordinates are not written twice.
func NewBackfill(store domain.LocationStore, resolver Resolver, logger *slog.Logger) *Backfill {
	return &Backfill{store: store, resolver: resolver, logger: logger}
}

// Run resolves and persists until the listing is exhausted or ctx is
// cancelled. Individual failures are logged and counted, never fatal.
func (b *Backfill) Run(ctx context.Context) (BackfillStats, error) {
	var stats BackfillStats

	locations, err := b.store.ListMissingCoordinates(ctx)
	if err != nil {
		return stats, fmt.Errorf("list locations missing coordinates: %w", err)
	}
	b.logger.Info("backfill started", "locations", len(locations))

	for _, loc := range locations {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Scanned++

		place := b.resolver.Resolve(ctx, loc)
		if place == nil {
			stats.Skipped++
			continue
		}

		if _, err := b.store.UpdateCoordinates(ctx, loc.ID, place.Coordinate); err != nil {
			b.logger.Warn("backfill write failed", "location_id", loc.ID, "error", err)
			stats.Skipped++
			continue
		}
		stats.Persisted++
		b.logger.Debug("backfilled coordinates",
			"location_id", loc.ID,
			"lat", place.Coordinate.Lat,
			"lng", place.Coordinate.Lng,
		)
	}

	b.logger.Info("backfill finished",
		"scanned", stats.Scanned,
		"persisted", stats.Persisted,
		"skipped", stats.Skipped,
	)
	return stats, nil
}
