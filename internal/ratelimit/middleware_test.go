package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware(generalMax, authMax int) *Middleware {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	m := NewMiddleware(
		New(generalMax, 60*time.Second),
		New(authMax, 60*time.Second),
		log,
	)
	m.now = func() time.Time {
		return time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC)
	}
	return m
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, path, remoteAddr, xff string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remoteAddr
	if xff != "" {
		r.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestAcceptSetsRateLimitHeaders(t *testing.T) {
	m := newTestMiddleware(100, 10)
	h := m.Handler(okHandler())

	w := doRequest(h, "/api/v1/deals", "10.0.0.1:1234", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "100", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "99", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Reset"))
}

func TestRejectReturns429WithRetryGuidance(t *testing.T) {
	m := newTestMiddleware(1, 10)
	h := m.Handler(okHandler())

	doRequest(h, "/api/v1/deals", "10.0.0.1:1234", "")
	w := doRequest(h, "/api/v1/deals", "10.0.0.1:1234", "")

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body["error"])
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, float64(60), body["retry_after"])
}

func TestAuthPathsUseStricterLimiter(t *testing.T) {
	// General limiter is wide open; only the auth limiter can deny.
	m := newTestMiddleware(100, 1)
	h := m.Handler(okHandler())

	w := doRequest(h, "/api/v1/auth/login", "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))

	w = doRequest(h, "/api/v1/auth/login", "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Non-auth paths remain governed by the general limiter.
	w = doRequest(h, "/api/v1/deals", "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIsAuthPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/api/v1/auth/login", true},
		{"/api/v1/auth/me", true},
		{"/login", true},
		{"/register", true},
		{"/oauth/token", true},
		{"/api/v1/deals", false},
		{"/api/v1/companies/AAPL", false},
		{"/health", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, isAuthPath(tt.path))
		})
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"forwarded-for wins", "10.0.0.1:1234", "203.0.113.7, 70.41.3.18", "203.0.113.7"},
		{"single forwarded-for", "10.0.0.1:1234", "203.0.113.7", "203.0.113.7"},
		{"remote addr host", "10.0.0.1:1234", "", "10.0.0.1"},
		{"remote addr without port", "10.0.0.1", "", "10.0.0.1"},
		{"nothing available", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, ClientID(r))
		})
	}
}

func TestSeparateClientsSeparateQuota(t *testing.T) {
	m := newTestMiddleware(1, 1)
	h := m.Handler(okHandler())

	w := doRequest(h, "/api/v1/deals", "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(h, "/api/v1/deals", "10.0.0.2:1234", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(h, "/api/v1/deals", "10.0.0.1:9999", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
