package store

import (
	"context"
	"errors"
	"time"

	"routeopt/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Solves
	SaveSolve(ctx context.Context, tenantID string, req model.SolveRequest, sol *model.SolutionOut) (model.SolveBatch, error)
	GetSolve(ctx context.Context, tenantID, id string) (model.SolveBatch, error)
	ListSolves(ctx context.Context, tenantID, cursor string, limit int) ([]model.SolveBatch, string, error)

	// Solver config per tenant
	GetSolverConfig(ctx context.Context, tenantID string) (map[string]any, error)
	SaveSolverConfig(ctx context.Context, tenantID string, cfg map[string]any) error

	// Plan metrics per solve
	SavePlanMetrics(ctx context.Context, tenantID, solveID string, metrics map[string]any) error
	ListPlanMetrics(ctx context.Context, tenantID, solveID string) ([]map[string]any, error)

	// Subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, tenantID, eventType string) ([]model.Subscription, error)
	ListSubscriptions(ctx context.Context, tenantID, cursor string, limit int) ([]model.Subscription, string, error)
	DeleteSubscription(ctx context.Context, tenantID, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, tenantID, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
	ListWebhookDeliveries(ctx context.Context, tenantID, status, cursor string, limit int) ([]map[string]any, string, error)
}

var ErrNotFound = errors.New("not found")

// WebhookDelivery is a queued webhook attempt.
type WebhookDelivery struct {
	ID             string
	TenantID       string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Attempts       int
	Status         string
	NextAttemptAt  time.Time
}
