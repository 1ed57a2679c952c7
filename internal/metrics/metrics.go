package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// SolveDuration records end-to-end solve durations by exploration level
	SolveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "solve_duration_seconds", Help: "Solve wall time in seconds.", Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60}},
		[]string{"exploration_level"},
	)
	// SolvesTotal counts solves by outcome
	SolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solves_total", Help: "Solve requests by outcome."},
		[]string{"status"},
	)
	// UnassignedJobs counts jobs left unassigned, by reason
	UnassignedJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "solve_unassigned_jobs_total", Help: "Jobs left unassigned by reason."},
		[]string{"reason"},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
)

// RegisterDefault registers the collectors on Registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(SolveDuration)
		Registry.MustRegister(SolvesTotal)
		Registry.MustRegister(UnassignedJobs)
		Registry.MustRegister(WebhookDeliveries)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
