package ratelimit

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Paths containing any of these substrings are checked against the stricter
// auth limiter.
var authPathMarkers = []string{"/auth/", "/login", "/register", "/token"}

// Middleware gates inbound requests through a general limiter and a stricter
// limiter for credential-handling routes.
type Middleware struct {
	general *Limiter
	auth    *Limiter
	log     zerolog.Logger
	now     func() time.Time
}

func NewMiddleware(general, auth *Limiter, log zerolog.Logger) *Middleware {
	return &Middleware{
		general: general,
		auth:    auth,
		log:     log.With().Str("component", "ratelimit").Logger(),
		now:     time.Now,
	}
}

func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter := m.general
		if isAuthPath(r.URL.Path) {
			limiter = m.auth
		}

		clientID := ClientID(r)
		now := m.now()
		allowed, remaining := limiter.Check(clientID, now)

		windowSec := int(limiter.Window().Seconds())
		reset := strconv.FormatInt(now.Unix()+int64(windowSec), 10)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		w.Header().Set("X-RateLimit-Reset", reset)

		if !allowed {
			m.log.Warn().
				Str("client", clientID).
				Str("path", r.URL.Path).
				Msg("Rate limit exceeded")

			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", strconv.Itoa(windowSec))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]any{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests. Please try again later.",
				"retry_after": windowSec,
			})
			return
		}

		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		next.ServeHTTP(w, r)
	})
}

// ClientID derives the rate-limiting key for a request: the first address in
// X-Forwarded-For when present, otherwise the connection's host. Forwarded
// headers are not verified, so this is an abuse deterrent rather than a
// security boundary.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

func isAuthPath(path string) bool {
	for _, marker := range authPathMarkers {
		if strings.Contains(path, marker) {
			return true
		}
	}
	return false
}
