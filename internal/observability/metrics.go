package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// location resolution pipeline.
type Metrics struct {
	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,empty,error,malformed}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,negative_hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Coordinate write-back metrics.
	CoordinateUpdates *prometheus.CounterVec // labels: outcome={success,error}
	DiscoveryEvents   *prometheus.CounterVec // labels: outcome={success,error}

	// Batch resolution metrics.
	BatchesResolved    prometheus.Counter
	MarkersPerBatch    prometheus.Histogram
	ResolutionInFlight prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcane_geo",
			Name:      "geocode_requests_total",
			Help:      "External geocoding lookups by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcane_geo",
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arcane_geo",
			Name:      "geocode_api_duration_seconds",
			Help:      "External geocoding request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		CoordinateUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcane_geo",
			Name:      "coordinate_updates_total",
			Help:      "Write-backs of discovered coordinates by outcome.",
		}, []string{"outcome"}),
		DiscoveryEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arcane_geo",
			Name:      "discovery_events_total",
			Help:      "Coordinate-discovery events published by outcome.",
		}, []string{"outcome"}),
		BatchesResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "arcane_geo",
			Name:      "batches_resolved_total",
			Help:      "Marker batches resolved to completion.",
		}),
		MarkersPerBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "arcane_geo",
			Name:      "markers_per_batch",
			Help:      "Number of markers produced per resolved batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		ResolutionInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arcane_geo",
			Name:      "resolution_in_flight",
			Help:      "Batches currently being resolved.",
		}),
	}

	prometheus.MustRegister(
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.CoordinateUpdates,
		m.DiscoveryEvents,
		m.BatchesResolved,
		m.MarkersPerBatch,
		m.ResolutionInFlight,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "arcane_geo", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "arcane_geo", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "arcane_geo", Name: "geocode_api_duration_seconds"}),
		CoordinateUpdates:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "arcane_geo", Name: "coordinate_updates_total"}, []string{"outcome"}),
		DiscoveryEvents:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "arcane_geo", Name: "discovery_events_total"}, []string{"outcome"}),
		BatchesResolved:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "arcane_geo", Name: "batches_resolved_total"}),
		MarkersPerBatch:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "arcane_geo", Name: "markers_per_batch"}),
		ResolutionInFlight: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "arcane_geo", Name: "resolution_in_flight"}),
	}
}
