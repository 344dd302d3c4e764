package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beer_submissions_total",
			Help: "Total number of beer submissions by assigned validation tier",
		},
		[]string{"tier", "status"},
	)

	sweepApprovalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "soft_validation_approvals_total",
			Help: "Total number of queue entries approved by the soft validation sweep",
		},
	)
)

// MetricsMiddleware records request counts and latencies per route pattern.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// RecordSubmission counts a processed submission against its tier.
func RecordSubmission(tier int, status string) {
	submissionsTotal.WithLabelValues(strconv.Itoa(tier), status).Inc()
}

// RecordSweepApprovals counts entries applied by the sweep.
func RecordSweepApprovals(count int) {
	sweepApprovalsTotal.Add(float64(count))
}
