// Package metrics holds the prometheus collectors shared by the relay, the
// request queue and the upstream client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheResults counts relay lookups by outcome (HIT, MISS, STALE, STALE-IF-ERROR, ERROR).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinrelay_cache_results_total",
		Help: "Relay cache lookups by outcome",
	}, []string{"result"})

	// BackgroundRefreshes counts stale-while-revalidate refreshes by result.
	BackgroundRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinrelay_background_refreshes_total",
		Help: "Background refreshes started for stale entries, by result",
	}, []string{"result"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinrelay_upstream_requests_total",
		Help: "Requests sent to CoinGecko by status code class",
	}, []string{"status"})

	UpstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "coinrelay_upstream_request_duration_seconds",
		Help:    "CoinGecko request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~12.8s
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coinrelay_queue_depth",
		Help: "Outbound requests waiting in the queue",
	})

	QueueFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coinrelay_queue_consecutive_failures",
		Help: "Consecutive failed dispatches driving the queue backoff",
	})
)

// StatusClass buckets an HTTP status for low-cardinality labels.
func StatusClass(code int) string {
	switch {
	case code == 429:
		return "429"
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code == 0:
		return "error"
	}
	return "other"
}
