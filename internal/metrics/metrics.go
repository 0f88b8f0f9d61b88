// Package metrics registers the Prometheus collectors shared across the
// gateway and the booking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts gateway requests by method, path and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybooking_http_requests_total",
		Help: "Total HTTP requests processed by the gateway.",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration observes gateway latency per route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skybooking_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// SeatConflicts counts seat assignments rejected because a seat was
	// claimed concurrently.
	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skybooking_seat_assignment_conflicts_total",
		Help: "Seat assignments that failed because a requested seat was not available.",
	})

	// CallTimeouts counts bounded calls that exceeded their budget, by
	// operation class.
	CallTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skybooking_bounded_call_timeouts_total",
		Help: "Manager calls that exceeded their time budget.",
	}, []string{"class"})
)
