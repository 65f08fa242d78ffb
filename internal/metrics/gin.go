package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute 是没有命中任何路由时使用的标签值。
const unmatchedRoute = "unmatched"

var (
	httpLabels = []string{"method", "route", "status"}

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "smartcv",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "API 请求耗时（秒）。",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 1, 2.5, 10, 30},
		},
		httpLabels,
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "smartcv",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API 请求数，按路由模板与状态码区分。",
		},
		httpLabels,
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "smartcv",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "正在处理的 API 请求数。",
		},
	)
)

// GinMiddleware 以路由模板（如 /v1/tables/:index）为标签记录请求。
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		httpInFlight.Inc()
		start := time.Now()

		c.Next()

		httpInFlight.Dec()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		httpDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		httpRequests.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler 暴露 /metrics。
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
