// Package pipeline drives batch location resolution: seeding markers from
// records that already carry coordinates, then geocoding the remainder
// sequentially while publishing incremental snapshots.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/geoff-maddock/arcane-city-geo/internal/cluster"
	"github.com/geoff-maddock/arcane-city-geo/internal/domain"
	"github.com/geoff-maddock/arcane-city-geo/internal/observability"
)

// Resolver resolves one location to a place, or nil on any failure.
type Resolver interface {
	Resolve(ctx context.Context, loc domain.Location) *domain.ResolvedPlace
}

// Snapshot is one published view of a batch in progress: the current marker
// list plus resolution progress. Resolved counts geocoding attempts made so
// far (success or failure) out of Total records that lacked coordinates.
type Snapshot struct {
	Markers   []cluster.Marker `json:"markers"`
	Resolved  int              `json:"resolved"`
	Total     int              `json:"total"`
	Resolving bool             `json:"resolving"`
}

// Orchestrator resolves batches of catalog records into marker snapshots.
// One orchestrator serves many batches; each Resolve call is an independent
// run whose context is the caller's liveness signal.
type Orchestrator struct {
	resolver Resolver
	logger   *slog.Logger
	metrics  *observability.Metrics
	ready    atomic.Bool
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(resolver Resolver, logger *slog.Logger, metrics *observability.Metrics) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		logger:   logger,
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once at least one batch has been resolved to
// completion, or an error describing why the service is not yet ready.
func (o *Orchestrator) CheckReadiness(_ context.Context) error {
	if !o.ready.Load() {
		return errors.New("no marker batch resolved yet")
	}
	return nil
}

// Resolve processes one batch of records and streams snapshots on the
// returned channel. The first snapshot covers records that already carried
// coordinates; one more follows every geocoding attempt, so a consumer can
// render continuous progress. The channel closes when the batch is done or
// ctx is cancelled; after cancellation no further snapshot is sent and any
// in-flight attempt's result is discarded.
func (o *Orchestrator) Resolve(ctx context.Context, records []domain.Record) <-chan Snapshot {
	out := make(chan Snapshot)
	go func() {
		defer close(out)
		o.run(ctx, records, out)
	}()
	return out
}

func (o *Orchestrator) run(ctx context.Context, records []domain.Record, out chan<- Snapshot) {
	o.metrics.ResolutionInFlight.Inc()
	defer o.metrics.ResolutionInFlight.Dec()

	set := cluster.NewMarkerSet()

	// Seeding: records with authoritative coordinates produce markers with
	// no cache or network activity, so the map can render early.
	var pending []domain.Record
	for _, rec := range records {
		if rec.Location == nil {
			pending = append(pending, rec)
			continue
		}
		if coord, ok := rec.Location.Coordinates(); ok {
			name := rec.Location.Name
			if q, ok := domain.AddressQuery(*rec.Location); ok {
				name = q
			}
			set.Add(rec, &domain.ResolvedPlace{Coordinate: coord, DisplayName: name})
			continue
		}
		pending = append(pending, rec)
	}

	total := len(pending)
	o.logger.Info("resolving batch",
		"records", len(records),
		"seeded_markers", set.Len(),
		"to_resolve", total,
	)

	if !o.publish(ctx, out, Snapshot{
		Markers:   set.Markers(),
		Resolved:  0,
		Total:     total,
		Resolving: total > 0,
	}) {
		return
	}

	// Resolve the remainder strictly sequentially, in input order. One
	// record's failure never aborts the batch; it just contributes no
	// marker. Grouping keys come from the resolved coordinate, so a
	// geocoded record merges with a seeded record at the same point.
	for i, rec := range pending {
		if ctx.Err() != nil {
			o.logger.Info("batch resolution cancelled", "resolved", i, "total", total)
			return
		}

		var place *domain.ResolvedPlace
		if rec.Location != nil {
			place = o.resolver.Resolve(ctx, *rec.Location)
		}
		if ctx.Err() != nil {
			// Discard the in-flight result; the consumer is gone.
			o.logger.Info("batch resolution cancelled", "resolved", i, "total", total)
			return
		}
		set.Add(rec, place)

		if !o.publish(ctx, out, Snapshot{
			Markers:   set.Markers(),
			Resolved:  i + 1,
			Total:     total,
			Resolving: i+1 < total,
		}) {
			return
		}
	}

	o.ready.Store(true)
	o.metrics.BatchesResolved.Inc()
	o.metrics.MarkersPerBatch.Observe(float64(set.Len()))
	o.logger.Info("batch resolved", "markers", set.Len(), "resolved", total)
}

// publish sends a snapshot unless the consumer's context is done. Returns
// false when the run should stop.
func (o *Orchestrator) publish(ctx context.Context, out chan<- Snapshot, snap Snapshot) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- snap:
		return true
	}
}
