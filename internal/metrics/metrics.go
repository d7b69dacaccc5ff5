// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_operations_total",
			Help: "Total number of gradebook operations by outcome",
		},
		[]string{"entity", "op", "result"},
	)

	GradeValueHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradebook_grade_value",
			Help:    "Distribution of stored grades after penalties",
			Buckets: prometheus.LinearBuckets(0, 1, 12),
		},
		[]string{"assignment"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Outcome labels used for the result dimension of OperationsTotal.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultError    = "error"
)
