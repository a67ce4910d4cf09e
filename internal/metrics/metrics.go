// Package metrics holds the Prometheus collectors shared by the upstream
// clients and the trip planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Name:      "upstream_requests_total",
		Help:      "Outbound API calls by client and outcome.",
	}, []string{"client", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trip_planner",
		Name:      "upstream_request_duration_seconds",
		Help:      "Latency of outbound API calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 45},
	}, []string{"client"})

	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "trip_planner",
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state per client (0 closed, 1 half-open, 2 open).",
	}, []string{"client"})

	Plans = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Name:      "plans_total",
		Help:      "Trip plan requests by outcome.",
	}, []string{"outcome"})

	DegradedComponents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Name:      "degraded_components_total",
		Help:      "Components that failed upstream and were replaced by an empty result.",
	}, []string{"component"})

	GeocodeCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trip_planner",
		Name:      "geocode_cache_lookups_total",
		Help:      "Geocode cache lookups by result.",
	}, []string{"result"})
)
