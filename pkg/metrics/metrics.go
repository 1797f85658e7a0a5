// Package metrics provides Prometheus metrics for the fern service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// HTTPRequestsTotal tracks inbound requests by route template and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks inbound request latency
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// QueryDuration tracks storage round trips per repository operation
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fern",
			Subsystem: "storage",
			Name:      "operation_duration_seconds",
			Help:      "Duration of repository operations in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "outcome"},
	)

	// ToolMutationsTotal tracks successful writes to the catalog
	ToolMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "tools",
			Name:      "mutations_total",
			Help:      "Total number of tool creates, updates and deletes",
		},
		[]string{"operation"},
	)

	// EventsPublishedTotal tracks tool lifecycle events sent to Kafka
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fern",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of tool lifecycle events published",
		},
		[]string{"type", "outcome"},
	)
)

// Outcome labels err as success or error.
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveQuery records the duration of a repository operation that started at start.
func ObserveQuery(operation string, start time.Time, err error) {
	QueryDuration.WithLabelValues(operation, Outcome(err)).Observe(time.Since(start).Seconds())
}
