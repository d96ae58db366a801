// Package metrics provides the centralized Prometheus registry reference for
// the TourAPI client. All metrics are defined in their respective packages
// (client, cache, ratelimit, stats) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - tour_requests_total{endpoint, outcome} (Counter): Calls by endpoint and outcome (success, failure, cache_hit)
//   - tour_request_duration_seconds{endpoint} (Histogram): Call duration by endpoint, retries included
//   - tour_errors_total{class} (Counter): Errors by class (network, decode, upstream, rate_limit, http)
//
// Retry Metrics (pkg/client):
//   - tour_retries_total{error_class} (Counter): Retry attempts by error class
//   - tour_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - tour_retry_exhausted_total{error_class} (Counter): Calls that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - tour_cache_hits_total (Counter): Cache hits
//   - tour_cache_misses_total (Counter): Cache misses
//   - tour_cache_errors_total{operation} (Counter): Cache operation errors
//   - tour_cache_written_bytes_total (Counter): Bytes written to the cache
//
// Throttle Metrics (pkg/ratelimit):
//   - tour_throttle_wait_seconds (Histogram): Time spent waiting on the outbound limiter
//
// Aggregation Metrics (pkg/stats):
//   - tour_stats_runs_total{kind} (Counter): Aggregation runs by kind (regions, categories, summary)
//   - tour_stats_key_failures_total{kind} (Counter): Per-key count failures by kind
//   - tour_stats_run_duration_seconds{kind} (Histogram): Aggregation run duration by kind
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   rate(tour_cache_hits_total[5m]) /
//   (rate(tour_cache_hits_total[5m]) + rate(tour_cache_misses_total[5m]))
//
//   # Request Error Rate
//   rate(tour_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(tour_request_duration_seconds_bucket[5m]))
//
//   # Retry Exhaustion Rate
//   rate(tour_retry_exhausted_total[5m])
