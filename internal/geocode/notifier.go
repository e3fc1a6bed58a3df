package geocode

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
)

// Notifier writes newly discovered coordinates back to the system of record
// and announces them to downstream consumers. Both writes are best-effort:
// Notify returns before they run, errors are logged and never retried, and
// nothing propagates back to the resolution pipeline.
type Notifier struct {
	store     domain.LocationStore
	announcer domain.Announcer // optional
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
	wg        sync.WaitGroup
}

// NewNotifier creates a Notifier. announcer may be nil when discovery events
// are disabled.
func NewNotifier(store domain.LocationStore, announcer domain.Announcer, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Notifier {
	return &Notifier{
		store:     store,
		announcer: announcer,
		timeout:   timeout,
		logger:    logger,
		metrics:   metrics,
	}
}

// Notify schedules the write-back of a discovered coordinate and returns
// immediately. The detached work carries its own timeout rather than the
// caller's context so a cancelled map view does not lose the discovery.
func (n *Notifier) Notify(d domain.CoordinateDiscovered) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		coord := domain.Coordinate{Lat: d.Lat, Lng: d.Lng}
		if _, err := n.store.UpdateCoordinates(ctx, d.LocationID, coord); err != nil {
			n.logger.Warn("coordinate write-back failed",
				"location_id", d.LocationID,
				"lat", d.Lat,
				"lng", d.Lng,
				"error", err,
			)
			n.metrics.CoordinateUpdates.WithLabelValues("error").Inc()
		} else {
			n.metrics.CoordinateUpdates.WithLabelValues("success").Inc()
		}

		if n.announcer == nil {
			return
		}
		if err := n.announcer.Announce(ctx, d); err != nil {
			n.logger.Warn("coordinate discovery announce failed",
				"location_id", d.LocationID,
				"error", err,
			)
			n.metrics.DiscoveryEvents.WithLabelValues("error").Inc()
			return
		}
		n.metrics.DiscoveryEvents.WithLabelValues("success").Inc()
	}()
}

// Wait blocks until all scheduled notifications have finished. Used by
// graceful shutdown and tests.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
