package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and gauges for the scrape pipeline.
type Metrics struct {
	ZonesEnumerated prometheus.Counter
	WardsEnumerated prometheus.Counter

	FetchAttempts prometheus.Counter
	FetchFailures prometheus.Counter

	RawFilesParsed    prometheus.Counter
	RawFilesSkipped   prometheus.Counter
	FeaturesCollected prometheus.Counter

	DuplicatesDropped *prometheus.CounterVec // label: view={segments,spread}
	OperatorLookups   *prometheus.CounterVec // label: outcome={matched,unknown_domain,malformed_email}

	// CableExceedsSegment counts rows whose recorded cable length is greater
	// than the recorded segment length, an unresolved upstream oddity.
	CableExceedsSegment prometheus.Counter

	PipelineRunning prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ZonesEnumerated,
		m.WardsEnumerated,
		m.FetchAttempts,
		m.FetchFailures,
		m.RawFilesParsed,
		m.RawFilesSkipped,
		m.FeaturesCollected,
		m.DuplicatesDropped,
		m.OperatorLookups,
		m.CableExceedsSegment,
		m.PipelineRunning,
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
		ZonesEnumerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "zones_enumerated_total",
			Help:      "Zones successfully enumerated.",
		}),
		WardsEnumerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "wards_enumerated_total",
			Help:      "Ward rows produced by zone enumeration.",
		}),
		FetchAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "fetch_attempts_total",
			Help:      "Per-ward raw data fetch attempts.",
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "fetch_failures_total",
			Help:      "Per-ward fetches that failed at the transport level.",
		}),
		RawFilesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "raw_files_parsed_total",
			Help:      "Raw ward files parsed into features.",
		}),
		RawFilesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "raw_files_skipped_total",
			Help:      "Raw ward files skipped as unparseable.",
		}),
		FeaturesCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "features_collected_total",
			Help:      "Permit features written to the consolidated collection.",
		}),
		DuplicatesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "duplicates_dropped_total",
			Help:      "Rows dropped by deduplication, per view.",
		}, []string{"view"}),
		OperatorLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "operator_lookups_total",
			Help:      "Email-domain operator lookups by outcome.",
		}, []string{"outcome"}),
		CableExceedsSegment: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bbmp_ofc",
			Name:      "quality_cable_exceeds_segment_total",
			Help:      "Segment rows whose cable length exceeds the segment length.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bbmp_ofc",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress.",
		}),
	}
}
