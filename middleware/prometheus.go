package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "code"},
	)

	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "code"},
	)

	requestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
		[]string{"method", "path"},
	)

	responseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "response_size_bytes",
			Help:    "Size of HTTP responses in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path", "code"},
	)

	errorRate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "error_rate_total",
			Help: "Total number of HTTP errors",
		},
		[]string{"method", "path", "code"},
	)

	recordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_records_written_total",
			Help: "Account records written, by record kind and operation",
		},
		[]string{"kind", "op"},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "account_validation_failures_total",
			Help: "Rejected account payloads, by record kind",
		},
		[]string{"kind"},
	)
)

// ObserveRecordWrite counts a successful create, update or delete.
func ObserveRecordWrite(kind, op string) {
	recordsWritten.WithLabelValues(kind, op).Inc()
}

// ObserveValidationFailure counts a payload rejected by the record validator.
func ObserveValidationFailure(kind string) {
	validationFailures.WithLabelValues(kind).Inc()
}

// PrometheusMiddleware records request metrics labelled by route template,
// so /passengers/:id stays one series regardless of ids.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipInstrumentation(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		requestsInFlight.WithLabelValues(method, path).Inc()
		defer requestsInFlight.WithLabelValues(method, path).Dec()

		c.Next()

		status := c.Writer.Status()
		code := strconv.Itoa(status)

		requestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		requestTotal.WithLabelValues(method, path, code).Inc()
		responseSize.WithLabelValues(method, path, code).Observe(float64(c.Writer.Size()))

		if status >= 500 {
			errorRate.WithLabelValues(method, path, code).Inc()
		}
	}
}
