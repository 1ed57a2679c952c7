package main

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"routeopt/internal/api"
	"routeopt/internal/buildinfo"
	"routeopt/internal/metrics"
)

func main() {
	srv, err := api.NewServer()
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	// Solving
	mux.HandleFunc("/v1/solve", srv.SolveHandler)
	mux.HandleFunc("/v1/solutions", srv.SolutionsHandler)
	mux.HandleFunc("/v1/solutions/", srv.SolutionByIDHandler) // includes /events/stream, /events/ws, /metrics
	mux.HandleFunc("/v1/solver/config", srv.SolverConfigHandler)
	mux.HandleFunc("/v1/admin/solver/config", srv.AdminSolverConfigHandler)

	// Subscriptions & webhooks
	mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)
	mux.HandleFunc("/v1/admin/webhook-deliveries", srv.WebhookDeliveriesHandler)

	// Health & observability
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/buildinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		info := buildinfo.Info()
		_, _ = w.Write([]byte(`{"version":"` + info["version"] + `","commit":"` + info["commit"] + `"}`))
	})

	// API docs
	mux.HandleFunc("/openapi.yaml", srv.OpenAPIHandler)
	mux.HandleFunc("/openapi.json", srv.SwaggerJSONHandler)
	mux.HandleFunc("/docs", srv.DocsHandler)

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           metricsMiddleware(logMiddleware(mux)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", addr)
	// Start webhook worker
	if srv.Pub != nil {
		srv.NewWebhookWorker().Start()
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		dur := time.Since(start)
		log.Printf("%s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, dur)
	})
}

// statusRecorder captures the response code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(c int) {
	r.code = c
	r.ResponseWriter.WriteHeader(c)
}

// Flush/Hijack pass through so SSE and websocket handlers keep working
// behind the middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		status := strconv.Itoa(rec.code)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(time.Since(start).Seconds())
	})
}
