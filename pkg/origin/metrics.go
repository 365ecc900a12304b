package origin

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// originRequestsTotal tracks served requests by route and status
	originRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "edge_origin_requests_total",
		Help: "Total origin requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// originRequestDuration includes the simulated delay
	originRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "edge_origin_request_duration_seconds",
		Help:    "Origin request duration in seconds by endpoint",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	originHandlerFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_origin_handler_faults_total",
		Help: "Total number of recovered handler panics",
	})

	originDelayInterrupted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_origin_delay_interrupted_total",
		Help: "Total number of simulated delays cut short by cancellation",
	})

	originPurgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "edge_origin_purges_total",
		Help: "Total number of PURGE requests that reached the origin",
	})
)
