package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "city_pulse"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	Submissions *prometheus.CounterVec // labels: outcome={success,validation,transport_error,format_error,abandoned,rejected}
	StoreSize   prometheus.Gauge

	// Classification boundary metrics.
	ClassifyRequests *prometheus.CounterVec // labels: outcome={success,transport_error,format_error}
	ClassifyDuration prometheus.Histogram

	// Capability metrics.
	LocationLookups  *prometheus.CounterVec // labels: source={device,address,unavailable}, outcome={success,error}
	ImageAttachments *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Report feed metrics.
	ReportsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PublishDropped   prometheus.Counter
	PublisherRunning prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Submissions,
		m.StoreSize,
		m.ClassifyRequests,
		m.ClassifyDuration,
		m.LocationLookups,
		m.ImageAttachments,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.ReportsPublished,
		m.PublishErrors,
		m.PublishDropped,
		m.PublisherRunning,
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
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Report submissions by outcome.",
		}, []string{"outcome"}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_reports",
			Help:      "Number of reports held in the event store.",
		}),
		ClassifyRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classify_requests_total",
			Help:      "Classification requests by outcome.",
		}, []string{"outcome"}),
		ClassifyDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classify_duration_seconds",
			Help:      "Duration of a classification round-trip.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30},
		}),
		LocationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_lookups_total",
			Help:      "Location acquisitions by source and outcome.",
		}, []string{"source", "outcome"}),
		ImageAttachments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_attachments_total",
			Help:      "Image encodings by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		ReportsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Reports written to the report feed topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed report feed batch writes.",
		}),
		PublishDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_dropped_total",
			Help:      "Reports dropped because the publish queue was full.",
		}),
		PublisherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "publisher_running",
			Help:      "1 when the report feed publisher is active, 0 otherwise.",
		}),
	}
}
