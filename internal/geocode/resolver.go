package geocode

import (
	"context"
	"log/slog"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Resolver turns a Location into a ResolvedPlace. Every failure mode
// degrades to nil; Resolve never returns an error. Resolution order,
// short-circuiting at the first success:
//
//  1. coordinates already on the location
//  2. cache (positive or negative) keyed by the canonical address query
//  3. external lookup, paced to the service's rate policy
//
// Successful lookups are cached and handed to the Notifier without blocking.
type Resolver struct {
	lookup   domain.Lookup
	cache    *Cache
	pacer    *Pacer
	notifier *Notifier // optional; nil disables write-back
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a Resolver. pacer and notifier may be nil; a nil clock
// defaults to real time.
func NewResolver(lookup domain.Lookup, cache *Cache, pacer *Pacer, notifier *Notifier, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Resolver{
		lookup:   lookup,
		cache:    cache,
		pacer:    pacer,
		notifier: notifier,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns the best-known coordinate for a location, or nil when the
// location cannot be resolved. Locations that already carry coordinates are
// returned directly with zero cache or network activity.
func (r *Resolver) Resolve(ctx context.Context, loc domain.Location) *domain.ResolvedPlace {
	if coord, ok := loc.Coordinates(); ok {
		place := &domain.ResolvedPlace{Coordinate: coord, DisplayName: loc.Name}
		// Address string, when derivable, is attached for display only.
		if query, ok := domain.AddressQuery(loc); ok {
			place.DisplayName = query
		}
		return place
	}

	query, ok := domain.AddressQuery(loc)
	if !ok {
		// Defined skip outcome, not an error.
		r.logger.Debug("location has no usable address", "location_id", loc.ID, "name", loc.Name)
		return nil
	}

	if place, ok := r.cache.Get(query); ok {
		if place == nil {
			r.metrics.GeocodeCache.WithLabelValues("negative_hit").Inc()
			return nil
		}
		r.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return place
	}
	r.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	if err := r.pacer.Wait(ctx); err != nil {
		// Cancelled before the external call; do not poison the cache.
		return nil
	}

	place, found, err := r.lookup.Lookup(ctx, query)
	if err != nil {
		r.logger.Warn("geocoding lookup failed", "location_id", loc.ID, "query", query, "error", err)
		r.metrics.GeocodeRequests.WithLabelValues("error").Inc()
		r.cache.PutNegative(query)
		return nil
	}
	if !found {
		r.logger.Info("geocoding returned no result", "location_id", loc.ID, "query", query)
		r.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
		r.cache.PutNegative(query)
		return nil
	}

	r.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	r.cache.Put(query, place)

	if r.notifier != nil {
		r.notifier.Notify(domain.CoordinateDiscovered{
			LocationID:   loc.ID,
			Lat:          place.Coordinate.Lat,
			Lng:          place.Coordinate.Lng,
			Query:        query,
			DiscoveredAt: r.clock.Now().UTC(),
		})
	}

	return &place
}

// ClearCache drops every cached entry, positive and negative. Exposed for
// tests and manual refresh tooling.
func (r *Resolver) ClearCache() {
	r.cache.Clear()
}
