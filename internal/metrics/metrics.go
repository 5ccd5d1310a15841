// Package metrics exposes Prometheus instrumentation for the pipeline and
// search paths. Collectors are registered with promauto at init and served
// at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EmailsProcessed counts emails whose extraction attempt resolved,
	// labeled by outcome: processed, retryable, claim_skipped.
	EmailsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_processed_total",
			Help: "Total number of emails handled by batch extraction runs",
		},
		[]string{"status"},
	)

	// TasksExtracted counts persisted tasks by stored category.
	TasksExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tasks_extracted_total",
			Help: "Total number of tasks extracted and persisted",
		},
		[]string{"category"},
	)

	// ProviderErrors counts completion/embedding provider failures by kind.
	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_errors_total",
			Help: "Total number of completion provider errors",
		},
		[]string{"kind"},
	)

	// SearchRequests counts hybrid searches by the mode that served them.
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests by retrieval mode",
		},
		[]string{"mode"},
	)

	// HTTPRequestDuration observes request latency per route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)
)

// IncEmailProcessed records one resolved extraction attempt.
func IncEmailProcessed(status string) {
	EmailsProcessed.WithLabelValues(status).Inc()
}

// IncTaskExtracted records one persisted task.
func IncTaskExtracted(category string) {
	TasksExtracted.WithLabelValues(category).Inc()
}

// IncProviderError records one provider failure.
func IncProviderError(kind string) {
	ProviderErrors.WithLabelValues(kind).Inc()
}

// IncSearchRequest records one search request by retrieval mode.
func IncSearchRequest(mode string) {
	SearchRequests.WithLabelValues(mode).Inc()
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
