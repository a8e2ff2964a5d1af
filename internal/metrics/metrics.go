// Package metrics provides Prometheus metrics for the mldata client and
// development server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "mldata"
)

// API client metrics track requests to the remote dataset API.
var (
	// APIRequestsTotal is the total number of API requests by method, endpoint and status class.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of remote API requests",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration is a histogram of API request duration in seconds.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of remote API requests in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
	}, []string{"method", "endpoint"})

	// PagesFetchedTotal is the total number of element pages fetched.
	PagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pages_fetched_total",
		Help:      "Total number of element pages fetched",
	})

	// ContentBytesTotal is the total number of content bytes transferred by direction.
	ContentBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "content_bytes_total",
		Help:      "Total number of element content bytes transferred",
	}, []string{"direction"})
)

// Export metrics track local mirror exports.
var (
	// ExportsTotal is the total number of exports by metadata format and outcome.
	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Total number of local mirror exports",
	}, []string{"format", "outcome"})

	// ExportElementsTotal is the total number of element content files written.
	ExportElementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_elements_total",
		Help:      "Total number of element content files written by exports",
	})

	// ExportFailuresTotal is the total number of per-element export failures.
	ExportFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "export_failures_total",
		Help:      "Total number of elements whose content could not be exported",
	})

	// ExportDuration is a histogram of export duration in seconds.
	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "export_duration_seconds",
		Help:      "Duration of local mirror exports in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~409s
	})
)

// Push metrics track folder uploads.
var (
	// PushFilesTotal is the total number of files handled by push, by outcome.
	PushFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "push_files_total",
		Help:      "Total number of files handled by push",
	}, []string{"outcome"})

	// WatcherEventsTotal is the total number of filesystem events seen by push --watch.
	WatcherEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "watcher_events_total",
		Help:      "Total number of filesystem events",
	}, []string{"type"})
)

// Development server metrics.
var (
	// ServerRequestsTotal is the total number of requests served by route and status.
	ServerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "server_requests_total",
		Help:      "Total number of requests served by the development server",
	}, []string{"route", "status"})

	// ServerDatasetsTotal is the number of datasets stored by the development server.
	ServerDatasetsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "server_datasets_total",
		Help:      "Number of datasets stored by the development server",
	})

	// ServerElementsTotal is the number of elements stored by the development server.
	ServerElementsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "server_elements_total",
		Help:      "Number of elements stored by the development server",
	})

	// ComponentStatus tracks the health of collected components.
	ComponentStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "component_status",
		Help:      "Health status of collected components (1=healthy, 0=unhealthy)",
	}, []string{"component"})

	// BuildInfo provides version and build information.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Version and build information",
	}, []string{"version", "go_version"})
)
