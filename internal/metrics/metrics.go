package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "chronolog_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	LogMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_log_mutations_total",
			Help: "Activity log mutations by operation and result",
		},
		[]string{"operation", "result"},
	)

	LogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chronolog_log_entries",
			Help: "Number of entries in the activity log",
		},
	)

	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_classifications_total",
			Help: "Classifications by source",
		},
		[]string{"source"},
	)

	ClassifyCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolog_classify_cache_hits_total",
			Help: "Classifications served from cache",
		},
	)

	FeedbackRecords = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronolog_feedback_records_total",
			Help: "Category corrections recorded",
		},
	)

	InsightsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronolog_insights_total",
			Help: "Insights produced by kind",
		},
		[]string{"kind"},
	)
)

// Middleware records request count and latency per route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
