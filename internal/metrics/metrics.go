// Package metrics defines the Prometheus instrumentation for the pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersCreated tracks orders accepted by intake
	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orderpipe_orders_created_total",
			Help: "Total number of orders accepted by intake",
		},
	)

	// OrdersProcessed tracks worker outcomes per final status
	OrdersProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderpipe_orders_processed_total",
			Help: "Total number of orders processed by the validation worker",
		},
		[]string{"status"},
	)

	// ValidationCalls tracks resilient client outcomes
	ValidationCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderpipe_validation_calls_total",
			Help: "Total number of validation client calls by outcome",
		},
		[]string{"outcome"},
	)

	// ValidationLatency tracks remote validation call latency
	ValidationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderpipe_validation_latency_seconds",
			Help:    "Remote validation call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BreakerState exposes the circuit breaker mode (0=closed, 1=open, 2=half-open)
	BreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderpipe_circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
	)

	// BreakerTransitions counts breaker state transitions
	BreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderpipe_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"from", "to"},
	)

	// QueueDepth tracks the number of waiting validation tasks
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "orderpipe_queue_depth",
			Help: "Number of validation tasks currently waiting in the queue",
		},
	)

	// HealthPollDuration tracks the duration of a full health poll cycle
	HealthPollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderpipe_health_poll_duration_seconds",
			Help:    "Duration of a full health poll cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ServiceUp reports per-service health (1=healthy, 0=anything else)
	ServiceUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orderpipe_service_up",
			Help: "Whether a monitored service reported healthy on the last poll",
		},
		[]string{"service"},
	)
)
