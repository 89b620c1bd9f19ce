// Package metrics holds the gateway's Prometheus collectors. They register on
// the default registry, which cmd/gateway exposes at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authgate",
		Name:      "graphql_operations_total",
		Help:      "GraphQL operations handled, by operation type and outcome.",
	}, []string{"type", "outcome"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "authgate",
		Name:      "graphql_operation_duration_seconds",
		Help:      "Time spent executing a GraphQL operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	BackendCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authgate",
		Name:      "backend_calls_total",
		Help:      "Calls to the hosted backend, by call and outcome.",
	}, []string{"call", "outcome"})

	SessionCookies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "authgate",
		Name:      "session_cookies_total",
		Help:      "Session cookie instructions written, by kind (set or clear).",
	}, []string{"kind"})
)

// Outcome labels a call result.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
