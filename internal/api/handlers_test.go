package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routeopt/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer()
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func postSolve(t *testing.T, s *Server, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_test")
	req.Header.Set("X-Role", "admin")
	s.SolveHandler(rr, req)
	return rr
}

var simpleProblem = []byte(`{
	"matrix": [[0,1,1],[1,0,0],[1,0,0]],
	"jobs": [{"id":1,"location_index":1},{"id":2,"location_index":2}],
	"vehicles": [{"id":1,"start_index":0,"end_index":0}]
}`)

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestSolveEndpoint(t *testing.T) {
	s := newTestServer(t)
	rr := postSolve(t, s, simpleProblem)
	if rr.Code != 200 {
		t.Fatalf("solve: got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp model.SolveResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SolutionID == "" {
		t.Fatal("missing solution id")
	}
	if resp.Solution.Summary.Cost != 2 {
		t.Fatalf("cost: got %d, want 2", resp.Solution.Summary.Cost)
	}
	if len(resp.Solution.Unassigned) != 0 {
		t.Fatalf("unassigned: %v", resp.Solution.Unassigned)
	}
	// steps include the depot on both ends
	steps := resp.Solution.Routes[0].Steps
	if steps[0].Type != "start" || steps[len(steps)-1].Type != "end" {
		t.Fatalf("steps: %+v", steps)
	}
}

func TestSolveRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"no jobs", `{"matrix":[[0]],"jobs":[],"vehicles":[{"id":1}]}`},
		{"no vehicles", `{"matrix":[[0]],"jobs":[{"id":1,"location_index":0}],"vehicles":[]}`},
		{"ragged matrix", `{"matrix":[[0,1],[1]],"jobs":[{"id":1,"location_index":0}],"vehicles":[{"id":1}]}`},
		{"bad window", `{"matrix":[[0]],"jobs":[{"id":1,"location_index":0,"time_windows":[[10,5]]}],"vehicles":[{"id":1}]}`},
		{"mixed profiles", `{"matrix":[[0,1],[1,0]],"jobs":[{"id":1,"location_index":0}],"vehicles":[{"id":1,"profile":"car"},{"id":2,"profile":"bicycle"}]}`},
		{"location out of bounds", `{"matrix":[[0,1],[1,0]],"jobs":[{"id":1,"location_index":5}],"vehicles":[{"id":1}]}`},
	}
	for _, tc := range cases {
		// fresh server per case so the solve rate limiter stays out of the way
		rr := postSolve(t, newTestServer(t), []byte(tc.body))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: got %d, want 400", tc.name, rr.Code)
		}
	}
}

func TestSolveWithoutMatrixUsesRoutingProvider(t *testing.T) {
	s := newTestServer(t)
	body := []byte(`{
		"jobs": [
			{"id":1,"location":[2.35,48.85]},
			{"id":2,"location":[2.37,48.86]}
		],
		"vehicles": [{"id":1,"start":[2.33,48.84],"end":[2.33,48.84]}]
	}`)
	rr := postSolve(t, s, body)
	if rr.Code != 200 {
		t.Fatalf("solve: got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp model.SolveResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Solution.Summary.Routed != 2 {
		t.Fatalf("routed: got %d", resp.Solution.Summary.Routed)
	}
}

func TestSolutionsListAndGet(t *testing.T) {
	s := newTestServer(t)
	rr := postSolve(t, s, simpleProblem)
	if rr.Code != 200 {
		t.Fatalf("solve: %d", rr.Code)
	}
	var resp model.SolveResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/solutions?limit=5", nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	s.SolutionsHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("list: %d", rr.Code)
	}
	var list struct {
		Items []model.SolveBatch `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != resp.SolutionID {
		t.Fatalf("list items: %+v", list.Items)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/solutions/"+resp.SolutionID, nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	s.SolutionByIDHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("get: %d", rr.Code)
	}
	var batch model.SolveBatch
	if err := json.Unmarshal(rr.Body.Bytes(), &batch); err != nil {
		t.Fatalf("decode batch: %v", err)
	}
	if batch.Solution == nil || batch.Solution.Summary.Cost != 2 {
		t.Fatalf("stored solution: %+v", batch.Solution)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/solutions/nope", nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	s.SolutionByIDHandler(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get unknown: %d", rr.Code)
	}
}

func TestSolveMetricsRecorded(t *testing.T) {
	s := newTestServer(t)
	rr := postSolve(t, s, simpleProblem)
	var resp model.SolveResponse
	_ = json.Unmarshal(rr.Body.Bytes(), &resp)

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/"+resp.SolutionID+"/metrics", nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	s.SolutionByIDHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("metrics: %d", rr.Code)
	}
	var out struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 1 {
		t.Fatalf("items: %v", out.Items)
	}
	if _, ok := out.Items[0]["cost"]; !ok {
		t.Fatalf("missing cost metric: %v", out.Items[0])
	}
}

func TestSolverConfigRoundTrip(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/v1/admin/solver/config", bytes.NewReader([]byte(`{"exploration_level":4}`)))
	req.Header.Set("X-Tenant-Id", "t_test")
	req.Header.Set("X-Role", "admin")
	s.AdminSolverConfigHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("put config: %d %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/solver/config", nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	s.SolverConfigHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("get config: %d", rr.Code)
	}
	var out struct {
		Defaults map[string]any `json:"defaults"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Defaults["exploration_level"].(float64) != 4 {
		t.Fatalf("defaults: %v", out.Defaults)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/v1/admin/solver/config", bytes.NewReader([]byte(`{"bogus":1}`)))
	req.Header.Set("X-Role", "admin")
	s.AdminSolverConfigHandler(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bogus config: %d", rr.Code)
	}
}

func TestSolveEnqueuesWebhook(t *testing.T) {
	s := newTestServer(t)
	subBody := []byte(`{"tenantId":"t_test","url":"https://example.invalid/webhook","events":["solve.completed"],"secret":"shh"}`)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/subscriptions", bytes.NewReader(subBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", "t_test")
	req.Header.Set("X-Role", "admin")
	s.SubscriptionsHandler(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create sub: %d", rr.Code)
	}

	if rr := postSolve(t, s, simpleProblem); rr.Code != 200 {
		t.Fatalf("solve: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/v1/admin/webhook-deliveries?limit=5", nil)
	req.Header.Set("X-Tenant-Id", "t_test")
	req.Header.Set("X-Role", "admin")
	s.WebhookDeliveriesHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("deliveries: %d", rr.Code)
	}
	var dres struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dres); err != nil {
		t.Fatalf("decode deliveries: %v", err)
	}
	if len(dres.Items) == 0 {
		t.Fatal("expected at least one delivery")
	}
	if et, _ := dres.Items[0]["eventType"].(string); et != "solve.completed" {
		t.Fatalf("eventType: %q", et)
	}
}

// sseRecorder is a minimal ResponseWriter that implements http.Flusher
// and captures writes for SSE tests.
type sseRecorder struct {
	hdr  http.Header
	buf  bytes.Buffer
	code int
}

func (r *sseRecorder) Header() http.Header {
	if r.hdr == nil {
		r.hdr = http.Header{}
	}
	return r.hdr
}
func (r *sseRecorder) WriteHeader(c int)           { r.code = c }
func (r *sseRecorder) Write(p []byte) (int, error) { return r.buf.Write(p) }
func (r *sseRecorder) Flush()                      {}

func TestSolveEventsSSE(t *testing.T) {
	s := newTestServer(t)
	rr := postSolve(t, s, simpleProblem)
	var resp model.SolveResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id := resp.SolutionID

	sseReq := httptest.NewRequest(http.MethodGet, "/v1/solutions/"+id+"/events/stream", nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sseReq = sseReq.WithContext(ctx)
	sseReq.Header.Set("X-Tenant-Id", "t_test")

	rec := &sseRecorder{}
	done := make(chan struct{})
	go func() {
		s.SolutionByIDHandler(rec, sseReq)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	s.Broker.Publish(id, SSEEvent{Type: "solve.completed", Data: map[string]any{"solveId": id}})

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if bytes.Contains(rec.buf.Bytes(), []byte("event: solve.completed")) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !bytes.Contains(rec.buf.Bytes(), []byte("event: solve.completed")) {
		t.Fatalf("SSE did not contain expected event. Body: %s", rec.buf.String())
	}
	cancel()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("handler did not exit after cancel")
	}
}
