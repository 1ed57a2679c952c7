package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"routeopt/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu       sync.Mutex
	solves   map[string]model.SolveBatch // id -> batch
	byTen    map[string][]string         // tenant -> solve ids, newest last
	cfg      map[string]map[string]any   // tenant -> solver config
	subs     map[string][]model.Subscription
	planMx   map[string]map[string][]map[string]any // tenant -> solveId -> items
	// Webhooks queue state
	deliveries         map[string]*memDelivery
	deliveriesByTenant map[string][]string
}

func NewMemory() *Memory {
	return &Memory{
		solves:             map[string]model.SolveBatch{},
		byTen:              map[string][]string{},
		cfg:                map[string]map[string]any{},
		subs:               map[string][]model.Subscription{},
		planMx:             map[string]map[string][]map[string]any{},
		deliveries:         map[string]*memDelivery{},
		deliveriesByTenant: map[string][]string{},
	}
}

// memDelivery augments WebhookDelivery with scheduling/metrics
type memDelivery struct {
	WebhookDelivery
	LastError    string
	ResponseCode int
	LatencyMs    int
	DeliveredAt  *time.Time
}

func (m *Memory) SaveSolve(ctx context.Context, tenantID string, req model.SolveRequest, sol *model.SolutionOut) (model.SolveBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := model.SolveBatch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "completed",
		Jobs:      len(req.Jobs),
		Vehicles:  len(req.Vehicles),
		Solution:  sol,
	}
	m.solves[b.ID] = b
	m.byTen[tenantID] = append(m.byTen[tenantID], b.ID)
	return b, nil
}

func (m *Memory) GetSolve(ctx context.Context, tenantID, id string) (model.SolveBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.solves[id]
	if !ok || b.TenantID != tenantID {
		return model.SolveBatch{}, ErrNotFound
	}
	return b, nil
}

func (m *Memory) ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.SolveBatch, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.byTen[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.SolveBatch{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		b := m.solves[ids[i]]
		b.Solution = nil // listings stay light
		out = append(out, b)
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) GetSolverConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg[tenantID], nil
}

func (m *Memory) SaveSolverConfig(ctx context.Context, tenantID string, cfg map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg[tenantID] = cfg
	return nil
}

func (m *Memory) SavePlanMetrics(ctx context.Context, tenantID, solveID string, metrics map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.planMx[tenantID] == nil {
		m.planMx[tenantID] = map[string][]map[string]any{}
	}
	m.planMx[tenantID][solveID] = append(m.planMx[tenantID][solveID], metrics)
	return nil
}

func (m *Memory) ListPlanMetrics(ctx context.Context, tenantID, solveID string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.planMx[tenantID][solveID], nil
}

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[req.TenantID] = append(m.subs[req.TenantID], sub)
	return sub, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Subscription{}
	for _, s := range m.subs[tenantID] {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[tenantID]
	start := 0
	if cursor != "" {
		for i := range list {
			if list[i].ID == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Subscription{}
	var next string
	for i := start; i < len(list) && len(out) < limit; i++ {
		out = append(out, list[i])
		next = list[i].ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.subs[tenantID]
	for i := range list {
		if list[i].ID == id {
			m.subs[tenantID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{WebhookDelivery: WebhookDelivery{
		ID: id, TenantID: tenantID, SubscriptionID: subscriptionID,
		EventType: eventType, URL: url, Secret: secret, Payload: payload,
		Status: "pending", NextAttemptAt: time.Now(),
	}}
	m.deliveriesByTenant[tenantID] = append(m.deliveriesByTenant[tenantID], id)
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	out := []WebhookDelivery{}
	for _, d := range m.deliveries {
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
		now := time.Now()
		d.DeliveredAt = &now
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}

func (m *Memory) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.deliveriesByTenant[tenantID]
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []map[string]any{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		d := m.deliveries[ids[i]]
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id": d.ID, "eventType": d.EventType, "status": d.Status,
			"attempts": d.Attempts, "lastError": d.LastError,
			"responseCode": d.ResponseCode, "latencyMs": d.LatencyMs,
		})
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}
