package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conversion pipeline.
type Metrics struct {
	FilesConverted  prometheus.Counter
	FileFailures    prometheus.Counter
	RecordsRead     prometheus.Counter
	RecordsDropped  prometheus.Counter
	FeaturesWritten prometheus.Counter
	PipelineRunning prometheus.Gauge

	ConversionDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		FilesConverted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nc2geojson",
			Name:      "files_converted_total",
			Help:      "Total input files converted successfully.",
		}),
		FileFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nc2geojson",
			Name:      "file_failures_total",
			Help:      "Total input files that failed to convert.",
		}),
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nc2geojson",
			Name:      "records_read_total",
			Help:      "Total rows tabularized from input datasets.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nc2geojson",
			Name:      "records_dropped_total",
			Help:      "Total rows dropped for containing missing values.",
		}),
		FeaturesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nc2geojson",
			Name:      "features_written_total",
			Help:      "Total point features written to output documents.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nc2geojson",
			Name:      "pipeline_running",
			Help:      "1 while a conversion run is active, 0 otherwise.",
		}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nc2geojson",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of a complete single-file conversion.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.FilesConverted,
		m.FileFailures,
		m.RecordsRead,
		m.RecordsDropped,
		m.FeaturesWritten,
		m.PipelineRunning,
		m.ConversionDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered instruments to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesConverted:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nc2geojson", Name: "files_converted_total"}),
		FileFailures:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nc2geojson", Name: "file_failures_total"}),
		RecordsRead:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nc2geojson", Name: "records_read_total"}),
		RecordsDropped:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nc2geojson", Name: "records_dropped_total"}),
		FeaturesWritten:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "nc2geojson", Name: "features_written_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "nc2geojson", Name: "pipeline_running"}),
		ConversionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "nc2geojson", Name: "conversion_duration_seconds"}),
	}
}
