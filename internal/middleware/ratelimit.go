package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultGeneralRPM = 100
	defaultAuthRPM    = 10
	limiterGCSize     = 1000
	limiterIdleTTL    = 10 * time.Minute
)

// credentialPaths are the anonymous endpoints that accept passwords; they get
// the tighter per-IP bucket to slow down guessing.
var credentialPaths = []string{
	"/api/v1/users/login",
	"/api/v1/users/register",
}

type clientLimiter struct {
	general  *rate.Limiter
	auth     *rate.Limiter
	lastSeen time.Time
}

type RateLimitMiddleware struct {
	generalRPM int
	authRPM    int
	mu         sync.Mutex
	clients    map[string]*clientLimiter
}

// NewRateLimitMiddleware builds per-IP limiters. A negative generalRPM
// disables the general bucket; authRPM falls back to a default when not positive.
func NewRateLimitMiddleware(generalRPM int, authRPM int) *RateLimitMiddleware {
	if generalRPM == 0 {
		generalRPM = defaultGeneralRPM
	}
	if authRPM <= 0 {
		authRPM = defaultAuthRPM
	}

	return &RateLimitMiddleware{
		generalRPM: generalRPM,
		authRPM:    authRPM,
		clients:    map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := m.getLimiter(ClientIP(r))

		target := limiter.general
		if isCredentialPath(r.URL.Path) {
			target = limiter.auth
		}

		if target != nil && !target.Allow() {
			w.Header().Set("Retry-After", "60")
			writeJSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *clientLimiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if limiter, exists := m.clients[clientIP]; exists {
		limiter.lastSeen = now
		return limiter
	}

	created := &clientLimiter{
		auth:     rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.authRPM)), m.authRPM),
		lastSeen: now,
	}
	if m.generalRPM > 0 {
		created.general = rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.generalRPM)), m.generalRPM)
	}
	m.clients[clientIP] = created
	m.gcLocked(now)

	return created
}

func (m *RateLimitMiddleware) gcLocked(now time.Time) {
	if len(m.clients) < limiterGCSize {
		return
	}

	cutoff := now.Add(-limiterIdleTTL)
	for ip, limiter := range m.clients {
		if limiter.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

func isCredentialPath(path string) bool {
	path = strings.TrimRight(strings.ToLower(path), "/")
	for _, p := range credentialPaths {
		if path == p {
			return true
		}
	}
	return false
}
