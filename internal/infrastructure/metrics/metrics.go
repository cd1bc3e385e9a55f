package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// It satisfies usecase.Recorder.
type Metrics struct {
	// Ledger metrics
	Mutations        *prometheus.CounterVec
	MutationFailures *prometheus.CounterVec

	// Aggregation metrics
	AggregationDuration prometheus.Histogram
	AggregatedMonths    prometheus.Gauge
	CacheLookups        *prometheus.CounterVec

	// Change publishing metrics
	ChangesPublished *prometheus.CounterVec
	ChangesDropped   prometheus.Counter

	// HTTP metrics
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	RateLimitHits        prometheus.Counter
}

// New registers all metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfy_mutations_total",
				Help: "Total committed ledger mutations",
			},
			[]string{"op"},
		),
		MutationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfy_mutation_failures_total",
				Help: "Total rejected or failed ledger mutations",
			},
			[]string{"op"},
		),

		AggregationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletfy_aggregation_duration_seconds",
			Help:    "Monthly balance aggregation duration",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		AggregatedMonths: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walletfy_aggregated_months",
			Help: "Number of months produced by the last aggregation",
		}),
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfy_balance_cache_lookups_total",
				Help: "Balance cache lookups by result",
			},
			[]string{"result"},
		),

		ChangesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfy_changes_published_total",
				Help: "Ledger change notifications handed to the publisher",
			},
			[]string{"status"},
		),
		ChangesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletfy_changes_dropped_total",
			Help: "Change notifications dropped because the queue was full",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletfy_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletfy_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "walletfy_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "walletfy_rate_limit_hits_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

// MutationCompleted counts a ledger mutation by outcome.
func (m *Metrics) MutationCompleted(op string, err error) {
	if err != nil {
		m.MutationFailures.WithLabelValues(op).Inc()
		return
	}
	m.Mutations.WithLabelValues(op).Inc()
}

// AggregationComputed records one aggregation run.
func (m *Metrics) AggregationComputed(d time.Duration, months int) {
	m.AggregationDuration.Observe(d.Seconds())
	m.AggregatedMonths.Set(float64(months))
}

// CacheLookup counts a balance cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ChangePublished counts a publish attempt.
func (m *Metrics) ChangePublished(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ChangesPublished.WithLabelValues(status).Inc()
}

// ChangeDropped counts a notification lost to back-pressure.
func (m *Metrics) ChangeDropped() {
	m.ChangesDropped.Inc()
}
