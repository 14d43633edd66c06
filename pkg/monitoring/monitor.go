package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	StoryPurchases = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "story_purchases_total",
			Help: "Number of stories bought",
		},
	)

	StoriesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stories_started_total",
			Help: "Number of stories started",
		},
	)

	PasswordSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "password_submissions_total",
			Help: "Password submissions by outcome",
		},
		[]string{"outcome"},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(StoryPurchases)
		prometheus.MustRegister(StoriesStarted)
		prometheus.MustRegister(PasswordSubmissions)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
