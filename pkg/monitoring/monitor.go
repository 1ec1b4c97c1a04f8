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
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// 练习引擎指标
	AttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_attempts_total",
			Help: "Answered practice questions",
		},
		[]string{"correct"},
	)

	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_sessions_started_total",
			Help: "Practice sessions created",
		},
	)

	SessionsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_sessions_finished_total",
			Help: "Practice sessions finished, by reason",
		},
		[]string{"reason"},
	)

	GeneratorFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "practice_generator_failures_total",
			Help: "Question generator runs that failed and fell back to the bank",
		},
	)

	ScoreAfterAttempt = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "practice_smartscore",
			Help:    "SmartScore after each attempt",
			Buckets: []float64{10, 30, 50, 70, 80, 90, 100},
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			AttemptCounter,
			SessionsStarted,
			SessionsFinished,
			GeneratorFailures,
			ScoreAfterAttempt,
		)
	})
}

func ObserveAttempt(correct bool, score int) {
	AttemptCounter.WithLabelValues(strconv.FormatBool(correct)).Inc()
	ScoreAfterAttempt.Observe(float64(score))
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
