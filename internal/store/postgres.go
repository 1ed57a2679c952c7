package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"routeopt/internal/model"
)

// Postgres persists solves, configs, subscriptions and the webhook queue.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// MigrateDir applies every .sql file of dir in lexical order. Dev helper;
// production schemas are managed externally.
func (p *Postgres) MigrateDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		body, err := os.ReadFile(filepath.Join(dir, n))
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(body)); err != nil {
			return err
		}
	}
	return nil
}

func toJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}

func (p *Postgres) SaveSolve(ctx context.Context, tenantID string, req model.SolveRequest, sol *model.SolutionOut) (model.SolveBatch, error) {
	b := model.SolveBatch{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Status:    "completed",
		Jobs:      len(req.Jobs),
		Vehicles:  len(req.Vehicles),
		Solution:  sol,
	}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solves (id, tenant_id, created_at, status, jobs, vehicles, request, solution)
		 VALUES ($1,$2,now(),$3,$4,$5,$6,$7)`,
		b.ID, tenantID, b.Status, b.Jobs, b.Vehicles, toJSON(req), toJSON(sol))
	if err != nil {
		return model.SolveBatch{}, err
	}
	return b, nil
}

func (p *Postgres) GetSolve(ctx context.Context, tenantID, id string) (model.SolveBatch, error) {
	var b model.SolveBatch
	var created time.Time
	var solJSON []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, tenant_id, created_at, status, jobs, vehicles, solution
		 FROM solves WHERE tenant_id=$1 AND id=$2`, tenantID, id).
		Scan(&b.ID, &b.TenantID, &created, &b.Status, &b.Jobs, &b.Vehicles, &solJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveBatch{}, ErrNotFound
	}
	if err != nil {
		return model.SolveBatch{}, err
	}
	b.CreatedAt = created.UTC().Format(time.RFC3339)
	if len(solJSON) > 0 {
		var sol model.SolutionOut
		if err := json.Unmarshal(solJSON, &sol); err == nil {
			b.Solution = &sol
		}
	}
	return b, nil
}

func (p *Postgres) ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.SolveBatch, string, error) {
	if limit <= 0 {
		limit = 100
	}
	args := []any{tenantID}
	q := `SELECT id::text, tenant_id, created_at, status, jobs, vehicles FROM solves WHERE tenant_id=$1`
	if cursor != "" {
		q += ` AND id > $2`
		args = append(args, cursor)
	}
	q += ` ORDER BY id LIMIT ` + strconv.Itoa(limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.SolveBatch{}
	var next string
	for rows.Next() {
		var b model.SolveBatch
		var created time.Time
		if err := rows.Scan(&b.ID, &b.TenantID, &created, &b.Status, &b.Jobs, &b.Vehicles); err != nil {
			return nil, "", err
		}
		b.CreatedAt = created.UTC().Format(time.RFC3339)
		out = append(out, b)
		next = b.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) GetSolverConfig(ctx context.Context, tenantID string) (map[string]any, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx, `SELECT config FROM solver_configs WHERE tenant_id=$1`, tenantID).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg map[string]any
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (p *Postgres) SaveSolverConfig(ctx context.Context, tenantID string, cfg map[string]any) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solver_configs (tenant_id, config) VALUES ($1,$2)
		 ON CONFLICT (tenant_id) DO UPDATE SET config=EXCLUDED.config`,
		tenantID, toJSON(cfg))
	return err
}

func (p *Postgres) SavePlanMetrics(ctx context.Context, tenantID, solveID string, metrics map[string]any) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO plan_metrics (id, tenant_id, solve_id, metrics, created_at) VALUES ($1,$2,$3,$4,now())`,
		uuid.New().String(), tenantID, solveID, toJSON(metrics))
	return err
}

func (p *Postgres) ListPlanMetrics(ctx context.Context, tenantID, solveID string) ([]map[string]any, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT metrics FROM plan_metrics WHERE tenant_id=$1 AND solve_id=$2 ORDER BY created_at`,
		tenantID, solveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []map[string]any{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var m map[string]any
		if err := json.Unmarshal(body, &m); err == nil {
			out = append(out, m)
		}
	}
	return out, rows.Err()
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	sub := model.Subscription{ID: uuid.New().String(), TenantID: req.TenantID, URL: req.URL, Events: req.Events, Secret: req.Secret}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, tenant_id, url, events, secret) VALUES ($1,$2,$3,$4,$5)`,
		sub.ID, sub.TenantID, sub.URL, toJSON(sub.Events), sub.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tenant_id, url, events, secret FROM subscriptions WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Subscription{}
	for rows.Next() {
		var s model.Subscription
		var events []byte
		if err := rows.Scan(&s.ID, &s.TenantID, &s.URL, &events, &s.Secret); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(events, &s.Events)
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error) {
	if limit <= 0 {
		limit = 100
	}
	args := []any{tenantID}
	q := `SELECT id::text, tenant_id, url, events FROM subscriptions WHERE tenant_id=$1`
	if cursor != "" {
		q += ` AND id > $2`
		args = append(args, cursor)
	}
	q += ` ORDER BY id LIMIT ` + strconv.Itoa(limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []model.Subscription{}
	var next string
	for rows.Next() {
		var s model.Subscription
		var events []byte
		if err := rows.Scan(&s.ID, &s.TenantID, &s.URL, &events); err != nil {
			return nil, "", err
		}
		_ = json.Unmarshal(events, &s.Events)
		out = append(out, s)
		next = s.ID
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, tenantID, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE tenant_id=$1 AND id=$2`, tenantID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, tenant_id, subscription_id, event_type, url, secret, payload, attempts, status, next_attempt_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,0,'pending',now())`,
		id, tenantID, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, tenant_id, subscription_id::text, event_type, url, secret, payload, attempts
		 FROM webhook_deliveries WHERE status='pending' AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT `+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []WebhookDelivery{}
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.TenantID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Attempts); err != nil {
			return nil, err
		}
		d.Status = "pending"
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx,
			`UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4, delivered_at=now() WHERE id=$1`,
			id, lastError, responseCode, latencyMs)
		return err
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4, next_attempt_at=$5 WHERE id=$1`,
		id, lastError, responseCode, latencyMs, nextAttemptAt)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$1`,
		id, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error) {
	if limit <= 0 {
		limit = 100
	}
	args := []any{tenantID}
	q := `SELECT id::text, event_type, status, attempts, COALESCE(last_error,''), COALESCE(response_code,0), COALESCE(latency_ms,0)
	      FROM webhook_deliveries WHERE tenant_id=$1`
	if status != "" {
		q += ` AND status=$` + strconv.Itoa(len(args)+1)
		args = append(args, status)
	}
	if cursor != "" {
		q += ` AND id > $` + strconv.Itoa(len(args)+1)
		args = append(args, cursor)
	}
	q += ` ORDER BY id LIMIT ` + strconv.Itoa(limit)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	out := []map[string]any{}
	var next string
	for rows.Next() {
		var id, eventType, st, lastErr string
		var attempts, code, latency int
		if err := rows.Scan(&id, &eventType, &st, &attempts, &lastErr, &code, &latency); err != nil {
			return nil, "", err
		}
		out = append(out, map[string]any{
			"id": id, "eventType": eventType, "status": st,
			"attempts": attempts, "lastError": lastErr,
			"responseCode": code, "latencyMs": latency,
		})
		next = id
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, rows.Err()
}

