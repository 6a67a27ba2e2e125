package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "memory_map"

// Metrics holds the Prometheus counters, histograms, and gauges for the map service.
type Metrics struct {
	// Data loading.
	SourceAttempts  *prometheus.CounterVec // labels: source, outcome={success,transport_error,format_error,not_configured}
	RecordsAdmitted prometheus.Counter
	RecordsDropped  *prometheus.CounterVec // labels: reason
	DataLoaded      prometheus.Gauge

	// Filtering and views.
	FilterApplications  *prometheus.CounterVec // labels: mode={all,text,hashtag}
	FilteredRecords     prometheus.Gauge
	ViewRebuildDuration prometheus.Histogram

	// Camera and pill.
	FlyTo            *prometheus.CounterVec // labels: outcome={started,arrived,aborted,blocked,unknown_record,no_marker}
	RotationsStarted prometheus.Counter
	PillsShown       prometheus.Counter

	// Commands and telemetry.
	Commands        *prometheus.CounterVec // labels: kind
	TelemetryErrors prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Data source fetch attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		RecordsAdmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_admitted_total",
			Help:      "Rows admitted into the canonical record set.",
		}),
		RecordsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_dropped_total",
			Help:      "Rows dropped during normalization by reason.",
		}, []string{"reason"}),
		DataLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_loaded",
			Help:      "1 once a record set has been loaded, 0 otherwise.",
		}),
		FilterApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_applications_total",
			Help:      "Filter applications by predicate mode.",
		}, []string{"mode"}),
		FilteredRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "filtered_records",
			Help:      "Size of the current filtered subset.",
		}),
		ViewRebuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "view_rebuild_duration_seconds",
			Help:      "Duration of a full marker, sidebar, scroller and counter rebuild.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		FlyTo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fly_to_total",
			Help:      "Fly-to requests by outcome.",
		}, []string{"outcome"}),
		RotationsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_started_total",
			Help:      "Idle camera rotations started after arrival.",
		}),
		PillsShown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pills_shown_total",
			Help:      "Memory pills displayed.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Dispatched UI commands by kind.",
		}, []string{"kind"}),
		TelemetryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_errors_total",
			Help:      "Interaction events that could not be published.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Reverse geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.SourceAttempts,
		m.RecordsAdmitted,
		m.RecordsDropped,
		m.DataLoaded,
		m.FilterApplications,
		m.FilteredRecords,
		m.ViewRebuildDuration,
		m.FlyTo,
		m.RotationsStarted,
		m.PillsShown,
		m.Commands,
		m.TelemetryErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
