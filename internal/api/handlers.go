package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"routeopt/internal/metrics"
	"routeopt/internal/model"
	"routeopt/internal/solver"
	"routeopt/internal/store"
	"routeopt/internal/webhooks"
)

// SolveHandler handles POST /v1/solve: run the engine synchronously, persist
// the batch, publish lifecycle events and enqueue completion webhooks.
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.limiter.Wrap(s.solve)(w, r)
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TenantID == "" {
		req.TenantID = p.Tenant
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}

	in, profile, err := buildInput(r.Context(), &req, s.Routing)
	if err != nil {
		metrics.SolvesTotal.WithLabelValues("rejected").Inc()
		var se *solver.Error
		if errors.As(err, &se) && se.Kind == solver.RoutingError {
			writeProblem(w, http.StatusBadGateway, "Routing failed", se.Message, r.URL.Path)
			return
		}
		writeProblem(w, http.StatusBadRequest, "Invalid problem", err.Error(), r.URL.Path)
		return
	}

	defaults, _ := s.Store.GetSolverConfig(r.Context(), req.TenantID)
	opts := solverOptions(req.Options, defaults)

	started := time.Now()
	sol, err := solver.Solve(r.Context(), in, opts)
	if err != nil {
		metrics.SolvesTotal.WithLabelValues("error").Inc()
		writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		return
	}
	elapsed := time.Since(started)
	metrics.SolveDuration.WithLabelValues(strconv.Itoa(opts.ExplorationLevel)).Observe(elapsed.Seconds())
	metrics.SolvesTotal.WithLabelValues("completed").Inc()
	for _, u := range sol.Unassigned {
		metrics.UnassignedJobs.WithLabelValues(u.Reason).Inc()
	}

	if opts.Geometry {
		s.attachGeometry(r, profile, sol)
	}

	wire := toWire(sol)
	batch, err := s.Store.SaveSolve(r.Context(), req.TenantID, req, &wire)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save solve failed", err.Error(), r.URL.Path)
		return
	}
	_ = s.Store.SavePlanMetrics(r.Context(), req.TenantID, batch.ID, map[string]any{
		"cost":             wire.Summary.Cost,
		"routed":           wire.Summary.Routed,
		"unassigned":       wire.Summary.Unassigned,
		"elapsedMs":        elapsed.Milliseconds(),
		"explorationLevel": opts.ExplorationLevel,
		"nbThreads":        opts.NbThreads,
	})

	s.Broker.Publish(batch.ID, SSEEvent{Type: "solve.completed", Data: map[string]any{
		"solveId": batch.ID, "cost": wire.Summary.Cost, "unassigned": wire.Summary.Unassigned,
	}})
	s.Pub.Emit(r.Context(), req.TenantID, webhooks.EventSolveCompleted, map[string]any{
		"solveId": batch.ID, "summary": wire.Summary,
	})

	writeJSON(w, http.StatusOK, model.SolveResponse{SolutionID: batch.ID, Solution: wire})
}

// attachGeometry fills per-route polylines through the routing provider.
// Failures leave geometry empty: shape is decoration, not part of the
// solution contract.
func (s *Server) attachGeometry(r *http.Request, profile string, sol *solver.Solution) {
	for i := range sol.Routes {
		coords := [][2]float64{}
		for _, st := range sol.Routes[i].Steps {
			if st.Location.Coords != nil {
				coords = append(coords, *st.Location.Coords)
			}
		}
		if len(coords) < 2 {
			continue
		}
		lines, err := s.Routing.Geometry(r.Context(), profile, coords)
		if err != nil {
			continue
		}
		sol.Routes[i].Geometry = strings.Join(lines, "")
	}
}

// SolutionsHandler handles GET /v1/solutions
func (s *Server) SolutionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListSolves(r.Context(), p.Tenant, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List solves failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// SolutionByIDHandler handles GET /v1/solutions/{id}, the SSE stream at
// /v1/solutions/{id}/events/stream, the websocket stream at
// /v1/solutions/{id}/events/ws, and /v1/solutions/{id}/metrics.
func (s *Server) SolutionByIDHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	rest := strings.TrimPrefix(r.URL.Path, "/v1/solutions/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		b, err := s.Store.GetSolve(r.Context(), p.Tenant, id)
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "unknown solve id", r.URL.Path)
			return
		}
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Get solve failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, b)
		return
	}

	switch strings.Join(parts[1:], "/") {
	case "events/stream":
		s.streamSolveEvents(w, r, id)
	case "events/ws":
		s.streamSolveEventsWS(w, r, id)
	case "metrics":
		items, err := s.Store.ListPlanMetrics(r.Context(), p.Tenant, id)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List metrics failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

// streamSolveEvents serves an SSE stream of solve lifecycle events.
func (s *Server) streamSolveEvents(w http.ResponseWriter, r *http.Request, id string) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	// heartbeat keeps intermediaries from closing the stream
	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()
	fmt.Fprintf(w, ": connected\n\n")
	fl.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprintf(w, ": ping\n\n")
			fl.Flush()
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			fl.Flush()
		}
	}
}

// SolverConfigHandler returns effective solver defaults for the tenant.
func (s *Server) SolverConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/solver/config" || r.Method != http.MethodGet {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	defaults := map[string]any{
		"exploration_level": 2,
		"nb_threads":        1,
		"time_budget_ms":    0,
		"max_exploration":   solver.MaxExplorationLevel,
	}
	p := s.getPrincipal(r)
	cfg, _ := s.Store.GetSolverConfig(r.Context(), p.Tenant)
	for k, v := range cfg {
		defaults[k] = v
	}
	writeJSON(w, http.StatusOK, map[string]any{"defaults": defaults})
}

// AdminSolverConfigHandler gets/sets the tenant's solver config.
func (s *Server) AdminSolverConfigHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/admin/solver/config" {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	switch r.Method {
	case http.MethodGet:
		cfg, _ := s.Store.GetSolverConfig(r.Context(), p.Tenant)
		if cfg == nil {
			cfg = map[string]any{}
		}
		writeJSON(w, http.StatusOK, cfg)
	case http.MethodPut:
		var cfg map[string]any
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateSolverConfig(cfg); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid config", err.Error(), r.URL.Path)
			return
		}
		if err := s.Store.SaveSolverConfig(r.Context(), p.Tenant, cfg); err != nil {
			writeProblem(w, http.StatusInternalServerError, "Save config failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	p := s.getPrincipal(r)
	switch r.Method {
	case http.MethodPost:
		if !p.IsAdmin() {
			writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
			return
		}
		var req model.SubscriptionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if req.TenantID == "" {
			req.TenantID = p.Tenant
		}
		if req.URL == "" || len(req.Events) == 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events required", r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		items, next, err := s.Store.ListSubscriptions(r.Context(), p.Tenant, cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if err := s.Store.DeleteSubscription(r.Context(), p.Tenant, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WebhookDeliveriesHandler handles GET /v1/admin/webhook-deliveries
func (s *Server) WebhookDeliveriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	p := s.getPrincipal(r)
	if !p.IsAdmin() {
		writeProblem(w, http.StatusForbidden, "Forbidden", "admin required", r.URL.Path)
		return
	}
	status := r.URL.Query().Get("status")
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListWebhookDeliveries(r.Context(), p.Tenant, status, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List deliveries failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler reports readiness.
func (s *Server) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
