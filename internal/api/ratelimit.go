package api

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// solveLimiter throttles /v1/solve per client IP.
type solveLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func newSolveLimiter() *solveLimiter {
	rps := 1.0
	if v := os.Getenv("SOLVE_RATE_PER_SEC"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			rps = f
		}
	}
	burst := 5
	if v := os.Getenv("SOLVE_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			burst = n
		}
	}
	return &solveLimiter{clients: map[string]*rate.Limiter{}, rps: rate.Limit(rps), burst: burst}
}

func (l *solveLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[key]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.clients[key] = lim
	}
	return lim
}

// Wrap rejects requests above the per-client budget with 429.
func (l *solveLimiter) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !l.limiter(host).Allow() {
			writeProblem(w, http.StatusTooManyRequests, "Rate limited", "solve budget exceeded, retry later", r.URL.Path)
			return
		}
		next(w, r)
	}
}
