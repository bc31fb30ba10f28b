// Package metrics provides Prometheus metrics for the connector.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_requests_total",
			Help: "Total number of connector actions by result status",
		},
		[]string{"action", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "connector_request_duration_seconds",
			Help:    "Connector action duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	cacheRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_cache_refreshes_total",
			Help: "Full directory cache rebuilds by reason",
		},
		[]string{"reason"},
	)

	thumbnailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "connector_thumbnails_total",
			Help: "Image inspections by result",
		},
		[]string{"result"},
	)
)

// ObserveRequest records one dispatched action.
func ObserveRequest(action, status string, d time.Duration) {
	requestsTotal.WithLabelValues(action, status).Inc()
	requestDuration.WithLabelValues(action).Observe(d.Seconds())
}

// CacheRefresh counts a full rebuild of a directory cache.
func CacheRefresh(reason string) {
	cacheRefreshesTotal.WithLabelValues(reason).Inc()
}

// Thumbnail counts an image info outcome: ok, failed or skipped.
func Thumbnail(result string) {
	thumbnailsTotal.WithLabelValues(result).Inc()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
