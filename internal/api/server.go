package api

import (
	"net/http"
	"os"
	"strings"

	"routeopt/internal/auth"
	"routeopt/internal/routing"
	"routeopt/internal/store"
	"routeopt/internal/webhooks"
)

type Server struct {
	Store   store.Store
	Pub     *webhooks.Publisher
	Auth    *auth.Verifier
	Broker  EventBroker
	Routing routing.Provider

	limiter *solveLimiter
}

// NewServer creates a Server. If DATABASE_URL is unset, uses in-memory store.
func NewServer() (*Server, error) {
	dsn := os.Getenv("DATABASE_URL")
	var s store.Store
	if strings.TrimSpace(dsn) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(dsn)
		if err != nil {
			return nil, err
		}
		// Run migrations (dev helper)
		if os.Getenv("DB_MIGRATE") != "false" {
			_ = sp.MigrateDir("db/migrations")
		}
		s = sp
	}
	var broker EventBroker
	if os.Getenv("REDIS_URL") != "" {
		if rb, err := NewRedisBroker(); err == nil {
			broker = rb
		} else {
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}
	return &Server{
		Store:   s,
		Pub:     webhooks.NewPublisher(s),
		Auth:    auth.NewVerifierFromEnv(),
		Broker:  broker,
		Routing: routing.NewHaversine(),
		limiter: newSolveLimiter(),
	}, nil
}

// getPrincipal extracts tenant and role from JWT or headers.
// - If Authorization: Bearer is present, uses the configured verifier.
// - Else falls back to headers for dev.
func (s *Server) getPrincipal(r *http.Request) auth.Principal {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") && s.Auth != nil {
		tok := strings.TrimSpace(authz[len("Bearer "):])
		if pr, err := s.Auth.Verify(tok); err == nil {
			return pr
		}
	}
	tenant := r.Header.Get("X-Tenant-Id")
	role := r.Header.Get("X-Role")
	if tenant == "" {
		tenant = "t_demo"
	}
	if role == "" {
		role = "admin"
	}
	return auth.Principal{Tenant: tenant, Role: role}
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}
