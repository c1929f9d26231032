// Package observability provides Prometheus metrics for the application.
package observability

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts counts authentication operations by operation and outcome.
	// Outcomes are coarse ("success", "rejected") so that the metric never
	// distinguishes unknown-username from wrong-password.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anecdote_auth_attempts_total",
		Help: "Total number of authentication attempts by operation and outcome",
	}, []string{"operation", "outcome"})

	// PostWrites counts post mutations by operation and outcome.
	PostWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anecdote_post_writes_total",
		Help: "Total number of post create/update/delete operations by outcome",
	}, []string{"operation", "outcome"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "anecdote_redis_error_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)

// NewHTTPMetrics creates the Prometheus middleware for HTTP request metrics.
func NewHTTPMetrics(service string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(service)
}

// Outcome converts an operation result into a metric label value.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return "rejected"
}
