package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Pipeline metrics
	PipelineRequests *prometheus.CounterVec
	ResolveDuration  prometheus.Histogram
	PlaceTierUsage   *prometheus.CounterVec
	GeoLookupErrors  *prometheus.CounterVec

	// Delivery metrics
	DeliveryAttempts *prometheus.CounterVec
	DeliveryOutcomes *prometheus.CounterVec
	DeliveryDuration *prometheus.HistogramVec
	QueueDepth       *prometheus.GaugeVec
}

// New creates the application metrics. Collectors are not registered;
// call Register with the target registerer so tests can keep separate
// registries.
func New(namespace string) *Metrics {
	return &Metrics{
		PipelineRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_requests_total",
			Help:      "Total number of location pipeline requests",
		}, []string{"status"}),
		ResolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving city and place for a request",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		PlaceTierUsage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "place_tier_usage_total",
			Help:      "Which fallback tier produced the recommended place",
		}, []string{"tier"}),
		GeoLookupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_lookup_errors_total",
			Help:      "Failures of external geo lookups by service",
		}, []string{"service"}),
		DeliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_attempts_total",
			Help:      "Total delivery attempts by channel",
		}, []string{"channel"}),
		DeliveryOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_outcomes_total",
			Help:      "Terminal delivery outcomes by channel",
		}, []string{"channel", "outcome"}),
		DeliveryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Time from dequeue to terminal outcome",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"channel"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Current number of in-flight jobs per channel",
		}, []string{"channel"}),
	}
}

// Register registers all collectors with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.PipelineRequests,
		m.ResolveDuration,
		m.PlaceTierUsage,
		m.GeoLookupErrors,
		m.DeliveryAttempts,
		m.DeliveryOutcomes,
		m.DeliveryDuration,
		m.QueueDepth,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
