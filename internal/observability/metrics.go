package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	contentRequestsTotal  *prometheus.CounterVec
	contentLatencySeconds *prometheus.HistogramVec
	contentErrorsTotal    *prometheus.CounterVec
	treeMutationsTotal    *prometheus.CounterVec
	uploadRequestsTotal   *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
	cleanupRemovedTotal   *prometheus.CounterVec
	eventsPublishedTotal  *prometheus.CounterVec
	eventClientsActive    prometheus.Gauge
	promptRunsTotal       *prometheus.CounterVec
	cacheLookupsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the content API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		contentRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_requests_total",
			Help: "Total number of content API requests served.",
		}, []string{"method", "route", "status"})

		contentLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "content_latency_seconds",
			Help:    "Latency distribution for content API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		contentErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_errors_total",
			Help: "Total number of error responses returned by content endpoints.",
		}, []string{"method", "route", "status"})

		treeMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tree_mutations_total",
			Help: "Mastery path tree mutations grouped by operation.",
		}, []string{"operation"})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_requests_total",
			Help: "Stored uploads grouped by media kind.",
		}, []string{"kind"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upload_rejected_total",
			Help: "Rejected media grouped by reason.",
		}, []string{"reason"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "upload_latency_seconds",
			Help:    "Time spent validating and storing uploads.",
			Buckets: prometheus.DefBuckets,
		})

		cleanupRemovedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cleanup_removed_total",
			Help: "Orphaned documents and references removed by the cleanup job.",
		}, []string{"collection"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Content events delivered to local subscribers.",
		}, []string{"resource", "origin"})

		eventClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "event_clients_active",
			Help: "Currently connected event stream clients.",
		})

		promptRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prompt_runs_total",
			Help: "Prompt executions grouped by outcome.",
		}, []string{"status"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups grouped by resource and result.",
		}, []string{"resource", "result"})

		prometheus.MustRegister(
			contentRequestsTotal,
			contentLatencySeconds,
			contentErrorsTotal,
			treeMutationsTotal,
			uploadRequestsTotal,
			uploadRejectedTotal,
			uploadLatencySeconds,
			cleanupRemovedTotal,
			eventsPublishedTotal,
			eventClientsActive,
			promptRunsTotal,
			cacheLookupsTotal,
		)
	})
}

// ContentRequests exposes the counter for content requests.
func ContentRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return contentRequestsTotal
}

// ContentLatency exposes the latency histogram for content requests.
func ContentLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return contentLatencySeconds
}

// ContentErrors exposes the counter for content error responses.
func ContentErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return contentErrorsTotal
}

// TreeMutations exposes the counter for tree mutations.
func TreeMutations() *prometheus.CounterVec {
	RegisterMetrics()
	return treeMutationsTotal
}

// UploadRequests exposes the counter for stored uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected media.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// CleanupRemoved exposes the counter for cleanup removals.
func CleanupRemoved() *prometheus.CounterVec {
	RegisterMetrics()
	return cleanupRemovedTotal
}

// EventsPublished exposes the counter for delivered content events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventClientsActive exposes the gauge for connected event stream clients.
func EventClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return eventClientsActive
}

// PromptRuns exposes the counter for prompt executions.
func PromptRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return promptRunsTotal
}

// CacheLookups exposes the counter for cache lookups.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}
