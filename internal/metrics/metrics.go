// Package metrics holds the prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "prioritytracker/internal/errors"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritytracker_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prioritytracker_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritytracker_login_attempts_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	priorityWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritytracker_priority_writes_total",
		Help: "Priority create/update/delete operations.",
	}, []string{"op"})

	initiativeReorders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prioritytracker_initiative_reorders_total",
		Help: "Initiative reorder and move operations.",
	})
)

// Middleware records request counts and latency per matched route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = apperrors.MapErrorToHTTP(err).StatusCode
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			httpDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Handler serves the default registry.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// LoginAttempt counts a login by outcome ("success" or "failure").
func LoginAttempt(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// PriorityWrite counts a priority mutation ("create", "update", "delete").
func PriorityWrite(op string) {
	priorityWrites.WithLabelValues(op).Inc()
}

// InitiativeReordered counts a reorder or move.
func InitiativeReordered() {
	initiativeReorders.Inc()
}
