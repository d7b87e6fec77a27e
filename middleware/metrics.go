package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellness",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wellness",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"method", "path"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency)
}

// Metrics records a request counter and latency histogram per route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			httpRequests.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			httpLatency.WithLabelValues(c.Request().Method, path).Observe(float64(time.Since(start).Milliseconds()))
			return err
		}
	}
}
