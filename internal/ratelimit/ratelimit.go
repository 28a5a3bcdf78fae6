package ratelimit

import (
	"sync"
	"time"
)

// Limiter bounds the number of requests accepted from a single client within
// a trailing window. State is in-process only: when the server is scaled
// horizontally each instance keeps its own counts, so a client can obtain up
// to instances x maxRequests effective quota. That is an accepted property of
// a best-effort limiter, not a bug.
type Limiter struct {
	mu          sync.Mutex
	maxRequests int
	window      time.Duration
	clients     map[string][]time.Time
}

func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		maxRequests: maxRequests,
		window:      window,
		clients:     make(map[string][]time.Time),
	}
}

// Check reports whether a request from clientID at time now is within quota,
// and how many requests remain in the window. Timestamps older than the
// window are pruned first; an allowed request records now, a denied one
// mutates nothing.
func (l *Limiter) Check(clientID string, now time.Time) (bool, int) {
	windowStart := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := l.clients[clientID]

	// Timestamps are appended in order, so expired ones form a prefix.
	i := 0
	for i < len(stamps) && stamps[i].Before(windowStart) {
		i++
	}
	if i > 0 {
		stamps = append(stamps[:0:0], stamps[i:]...)
	}

	if len(stamps) >= l.maxRequests {
		l.clients[clientID] = stamps
		return false, 0
	}

	stamps = append(stamps, now)
	l.clients[clientID] = stamps
	return true, l.maxRequests - len(stamps)
}

func (l *Limiter) Limit() int {
	return l.maxRequests
}

func (l *Limiter) Window() time.Duration {
	return l.window
}
