package router

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "How many HTTP requests the document server processed, partitioned by status code, method and route.",
		},
		[]string{"code", "method", "route"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tracker_http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds. Subscriptions are observed when the websocket closes.",
		},
		[]string{"code", "method", "route"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracker_http_requests_in_flight",
			Help: "Number of requests being served, including open subscriptions.",
		},
	)

	metrics = []prometheus.Collector{requestCount, requestDuration, requestsInFlight}
)

// registerPrometheusMetrics registers the request metrics with the default
// registry.
func registerPrometheusMetrics() error {
	for _, c := range metrics {
		if err := prometheus.Register(c); err != nil {
			return fmt.Errorf("could not register %s with Prometheus: %w", c, err)
		}
	}
	return nil
}

// unregisterPrometheusMetrics is needed so that a new router can register
// them again, e.g. in tests.
func unregisterPrometheusMetrics() bool {
	ok := true
	for _, c := range metrics {
		ok = prometheus.Unregister(c) && ok
	}
	return ok
}

// MetricsMiddleware updates the request metrics.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		// The route template keeps the cardinality independent of record IDs
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status())
		requestDuration.WithLabelValues(status, c.Request.Method, route).Observe(time.Since(start).Seconds())
		requestCount.WithLabelValues(status, c.Request.Method, route).Inc()
	}
}
