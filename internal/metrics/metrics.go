package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "movaro"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Pricing metrics
var (
	QuotesComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_computed_total",
			Help:      "Total number of quotes computed",
		},
		[]string{"category", "profile"},
	)

	QuoteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_seconds",
			Help:      "Quote computation time distribution",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	EstimatorCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "estimator_calls_total",
			Help:      "Total number of external estimator calls",
		},
		[]string{"status"},
	)

	BlendsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blends_applied_total",
			Help:      "Total number of quotes adjusted by the blending policy",
		},
	)
)

// Booking administration metrics
var (
	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Total number of bookings persisted",
		},
	)

	AuditActionsCommitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_actions_committed_total",
			Help:      "Total number of committed administrative actions",
		},
		[]string{"action"},
	)

	RepriceConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reprice_conflicts_total",
			Help:      "Total number of reprice commits refused with a conflict",
		},
	)
)
