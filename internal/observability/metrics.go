package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	// Per-source fetch metrics.
	FetchesTotal  *prometheus.CounterVec   // labels: source, outcome={healthy,empty,error}
	FetchDuration *prometheus.HistogramVec // labels: source

	// Refresh cycle metrics.
	RefreshesTotal  prometheus.Counter
	RefreshDuration prometheus.Histogram
	CacheHits       prometheus.Counter
	SnapshotEvents  prometheus.Gauge
	StaleFallbacks  prometheus.Counter

	// Filter and correlation metrics.
	EventsFiltered  *prometheus.CounterVec // labels: reason={language,stale}
	CorrelatedPairs prometheus.Counter

	// Firehose sink metrics.
	SinkPublishes *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.RefreshesTotal,
		m.RefreshDuration,
		m.CacheHits,
		m.SnapshotEvents,
		m.StaleFallbacks,
		m.EventsFiltered,
		m.CorrelatedPairs,
		m.SinkPublishes,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "fetches_total",
			Help:      "Source fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "event_feed",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one source fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"source"}),
		RefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "refreshes_total",
			Help:      "Completed aggregation refresh cycles.",
		}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "event_feed",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a complete fan-out, merge, correlate, sort cycle.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "cache_hits_total",
			Help:      "Reads served from the snapshot cache without adapter calls.",
		}),
		SnapshotEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "event_feed",
			Name:      "snapshot_events",
			Help:      "Events in the current merged snapshot.",
		}),
		StaleFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "stale_fallbacks_total",
			Help:      "Refresh cycles that served the last good snapshot after total failure.",
		}),
		EventsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "events_filtered_total",
			Help:      "Events dropped by post-merge filters, by reason.",
		}, []string{"reason"}),
		CorrelatedPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "correlated_pairs_total",
			Help:      "Cross-source event pairs joined by keyword similarity.",
		}),
		SinkPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "event_feed",
			Name:      "sink_publishes_total",
			Help:      "Firehose sink publish attempts by outcome.",
		}, []string{"outcome"}),
	}
}
