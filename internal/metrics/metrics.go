// Package metrics registers the Prometheus collectors shared by the server
// and the clerk client.
package metrics

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
			Name: "sgs_http_requests_total",
			Help: "Total HTTP requests handled by the API.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgs_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Commits counts task commits by remote outcome (ok, failed, skipped).
	Commits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgs_task_commits_total",
			Help: "Ground check commits by remote outcome.",
		},
		[]string{"remote"},
	)

	// Renders counts document renders by renderer and result.
	Renders = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgs_renders_total",
			Help: "Document renders by renderer and result.",
		},
		[]string{"renderer", "result"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgs_render_duration_seconds",
			Help:    "Document render latency in seconds.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"renderer"},
	)

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgs_reference_cache_hits_total",
		Help: "Reference cache hits.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sgs_reference_cache_misses_total",
		Help: "Reference cache misses.",
	})
)

// Middleware records request count and latency per route template, so
// ids in the path never become label values.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
