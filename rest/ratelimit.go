package rest

import (
	"net/http"
	"sync"
	"time"

	cache "github.com/Code-Hex/go-generics-cache"
	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	defaultRateLimitWindow = time.Minute
	defaultRateLimitMax    = 100
)

// window is one fixed counting window for a client IP.
type window struct {
	count   int
	resetAt time.Time
}

// rateLimiter applies a fixed-window request cap per client IP. Entries
// expire with the window so idle clients cost nothing.
type rateLimiter struct {
	mu      sync.Mutex
	windows *cache.Cache[string, *window]
	window  time.Duration
	max     int
}

func newRateLimiter(cfg config.RateLimitConfig) *rateLimiter {
	windowSize := defaultRateLimitWindow
	if cfg.WindowSeconds > 0 {
		windowSize = time.Duration(cfg.WindowSeconds) * time.Second
	}
	max := defaultRateLimitMax
	if cfg.MaxRequests > 0 {
		max = cfg.MaxRequests
	}
	return &rateLimiter{
		windows: cache.New[string, *window](),
		window:  windowSize,
		max:     max,
	}
}

// allow counts one request from ip and reports whether it fits the window.
func (l *rateLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, ok := l.windows.Get(ip)
	if !ok || now.After(current.resetAt) {
		l.windows.Set(ip, &window{count: 1, resetAt: now.Add(l.window)}, cache.WithExpiration(l.window))
		return true
	}
	current.count++
	return current.count <= l.max
}

// RateLimitMiddleware rejects clients past the per-IP cap with a 429 and
// leaves a RATE_LIMIT_EXCEEDED trail.
func (h *Handler) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := originFromRequest(r)
		if !h.limiter.allow(origin.IP, time.Now()) {
			h.Audit.Dispatch(&domain.AuditLog{
				Action:     domain.ActionRateLimitExceeded,
				ActionType: domain.ActionTypeRead,
				IP:         origin.IP,
				UserAgent:  origin.UserAgent,
				Details:    bson.M{"path": r.URL.Path},
			})
			h.ErrorResponse(r.Context(), w, http.StatusTooManyRequests, "Too many requests, please try again later", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
