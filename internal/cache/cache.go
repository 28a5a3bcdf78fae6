package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Result tells a reader whether the value was found, definitely absent, or
// unknowable because the store could not be reached.
type Result int

const (
	Miss Result = iota
	Hit
	Unavailable
)

// Default freshness windows per resource kind. Volatile data expires fast,
// slow-moving data is kept around longer.
var defaultTTLs = map[string]time.Duration{
	"company_detail":     5 * time.Minute,
	"company_timeseries": 10 * time.Minute,
	"company_ownership":  30 * time.Minute,
	"company_news":       2 * time.Minute,
	"deal_detail":        5 * time.Minute,
	"deals_list":         1 * time.Minute,
	"companies_list":     1 * time.Minute,
	"search_results":     5 * time.Minute,
	"comps":              10 * time.Minute,
	"precedents":         10 * time.Minute,
	"quote_snapshot":     1 * time.Minute,
}

const fallbackTTL = 5 * time.Minute

// Manager memoizes JSON-serializable responses in the backing store. A nil or
// unreachable store degrades to "no caching": reads miss, writes report
// failure, nothing errors out of the request path.
type Manager struct {
	store Store
	log   zerolog.Logger
}

func NewManager(store Store, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log.With().Str("component", "cache").Logger(),
	}
}

// Connect builds a Manager backed by Redis. Connection failure is non-fatal:
// it logs a warning and returns a Manager with caching disabled.
func Connect(redisURL string, log zerolog.Logger) *Manager {
	store, err := NewRedisStore(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Invalid Redis URL, caching disabled")
		return NewManager(nil, log)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Redis unreachable at startup, caching degraded")
	}

	return NewManager(store, log)
}

// Get unmarshals the cached value for key into dest. Returns Hit only when a
// fresh value was found and decoded.
func (m *Manager) Get(ctx context.Context, key string, dest any) Result {
	if m.store == nil {
		return Unavailable
	}

	data, err := m.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Miss
	}
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("Cache get failed")
		return Unavailable
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		// Corrupt entry. Treat as a miss so the caller recomputes and
		// overwrites it.
		m.log.Warn().Err(err).Str("key", key).Msg("Cache entry undecodable")
		return Miss
	}

	return Hit
}

// Set stores value under key with the given TTL. Store unavailability is
// absorbed (returns false); a marshal failure is a caller bug and is returned
// as an error.
func (m *Manager) Set(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache: marshal %s: %w", key, err)
	}

	if m.store == nil {
		return false, nil
	}

	if err := m.store.Set(ctx, key, string(data), ttl); err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("Cache set failed")
		return false, nil
	}

	return true, nil
}

// SetKind is Set with the default TTL for the given resource kind.
func (m *Manager) SetKind(ctx context.Context, kind, key string, value any) (bool, error) {
	return m.Set(ctx, key, value, TTLFor(kind))
}

func (m *Manager) Delete(ctx context.Context, key string) bool {
	if m.store == nil {
		return false
	}

	n, err := m.store.Del(ctx, key)
	if err != nil {
		m.log.Warn().Err(err).Str("key", key).Msg("Cache delete failed")
		return false
	}
	return n > 0
}

// DeleteMatching removes every key matching pattern and reports how many
// entries were dropped.
func (m *Manager) DeleteMatching(ctx context.Context, pattern string) int {
	if m.store == nil {
		return 0
	}

	keys, err := m.store.Keys(ctx, pattern)
	if err != nil {
		m.log.Warn().Err(err).Str("pattern", pattern).Msg("Cache scan failed")
		return 0
	}
	if len(keys) == 0 {
		return 0
	}

	n, err := m.store.Del(ctx, keys...)
	if err != nil {
		m.log.Warn().Err(err).Str("pattern", pattern).Msg("Cache delete failed")
		return 0
	}
	return int(n)
}

// InvalidateCompany drops every cached view of the given ticker.
func (m *Manager) InvalidateCompany(ctx context.Context, ticker string) {
	deleted := m.DeleteMatching(ctx, "company:*:"+normalizeTicker(ticker))
	if deleted > 0 {
		m.log.Info().Str("ticker", ticker).Int("entries", deleted).Msg("Invalidated company cache")
	}
}

// TTLFor returns the default TTL for a resource kind.
func TTLFor(kind string) time.Duration {
	if ttl, ok := defaultTTLs[kind]; ok {
		return ttl
	}
	return fallbackTTL
}

type Health struct {
	Status     string `json:"status"`
	Connection bool   `json:"connection"`
	Message    string `json:"message,omitempty"`
}

func (m *Manager) Health(ctx context.Context) Health {
	if m.store == nil {
		return Health{Status: "disabled", Message: "no backing store configured"}
	}

	if err := m.store.Ping(ctx); err != nil {
		return Health{Status: "error", Message: err.Error()}
	}

	return Health{Status: "healthy", Connection: true}
}

// Close releases the store connection, if any.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}
