package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "squirrel_dashboard"

// Metrics holds the Prometheus counters, histograms, and gauges for dashboard builds.
type Metrics struct {
	RecordsLoaded             prometheus.Counter
	RecordsWithoutCoordinates prometheus.Counter
	BlocksEmitted             *prometheus.CounterVec // labels: kind={text,chart}
	SinkErrors                prometheus.Counter
	BuildDuration             prometheus.Histogram
	DashboardReady            prometheus.Gauge
}

// NewMetrics creates and registers all dashboard metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsLoaded,
		m.RecordsWithoutCoordinates,
		m.BlocksEmitted,
		m.SinkErrors,
		m.BuildDuration,
		m.DashboardReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_loaded_total",
			Help:      "Total sighting records read from the source.",
		}),
		RecordsWithoutCoordinates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_without_coordinates_total",
			Help:      "Sightings whose coordinates could not be derived.",
		}),
		BlocksEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_emitted_total",
			Help:      "Report blocks handed to the sinks by kind.",
		}, []string{"kind"}),
		SinkErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_errors_total",
			Help:      "Total sink failures.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete dashboard build.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DashboardReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dashboard_ready",
			Help:      "1 once a dashboard has been built, 0 otherwise.",
		}),
	}
}
