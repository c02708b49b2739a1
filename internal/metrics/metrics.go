package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FeedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shanyrak_feed_subscribers",
		Help: "Current number of websocket subscribers to announcement comment feeds",
	})
	FeedEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shanyrak_feed_events_total",
		Help: "Total number of comment events broadcast to feeds",
	})
	AnnouncementsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shanyrak_announcements_created_total",
		Help: "Total number of announcements created",
	})
	CommentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shanyrak_comment_mutations_total",
		Help: "Total number of comment mutations by kind",
	}, []string{"kind"})
	HttpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HttpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(FeedSubscribers, FeedEventsTotal, AnnouncementsCreated, CommentsTotal, HttpRequestsTotal, HttpRequestDuration)
}

// GinMiddleware 统计基础请求指标，供 Prometheus 拉取。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := prometheus.Labels{"method": c.Request.Method, "path": path, "status": status}
		HttpRequestsTotal.With(labels).Inc()
		HttpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
