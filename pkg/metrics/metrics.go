// Package metrics exposes the Prometheus registry shared by the origin
// and the dashboard. Series are declared with promauto in the package
// that owns them (origin, client, dashboard); this package serves them.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gatherer collects every series registered through promauto.
var Gatherer = prometheus.DefaultGatherer

// Handler serves all registered series in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Origin (pkg/origin):
//   - edge_origin_requests_total{endpoint, status} (Counter): Requests served by route template and status
//   - edge_origin_request_duration_seconds{endpoint} (Histogram): Handler duration including the simulated delay
//   - edge_origin_handler_faults_total (Counter): Panics recovered into a 500
//   - edge_origin_delay_interrupted_total (Counter): Simulated delays cut short by a cancelled request
//   - edge_origin_purges_total (Counter): PURGE requests that reached the origin
//
// Probe client (pkg/client):
//   - edge_probe_results_total{endpoint, cache_status} (Counter): Probes by endpoint and classified status
//   - edge_probe_duration_seconds{cache_status} (Histogram): Client-observed latency by status
//   - edge_probe_errors_total{class} (Counter): Failed probes by class (network, client, server, decode)
//
// Dashboard (pkg/dashboard):
//   - edge_uptime_resyncs_total (Counter): Successful uptime resyncs
//   - edge_uptime_resync_failures_total (Counter): Resync failures absorbed by the synchronizer
//
// Example Prometheus Queries:
//
//   # Edge hit rate as seen by the probe client
//   sum(rate(edge_probe_results_total{cache_status="HIT"}[5m])) /
//   sum(rate(edge_probe_results_total{endpoint="/fast-data"}[5m]))
//
//   # Requests that got through to the origin
//   sum by (endpoint) (rate(edge_origin_requests_total[5m]))
//
//   # P95 latency of cache hits vs misses
//   histogram_quantile(0.95, sum by (le, cache_status) (rate(edge_probe_duration_seconds_bucket[5m])))
