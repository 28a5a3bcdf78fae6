package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/deallens/deallens/internal/cache"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    pinger
	cache *cache.Manager
}

func NewHealthHandler(db pinger, cacheManager *cache.Manager) *HealthHandler {
	return &HealthHandler{db: db, cache: cacheManager}
}

func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	overall := "ok"
	status := http.StatusOK
	dbStatus := "healthy"
	if h.db == nil {
		dbStatus = "disabled"
	} else if err := h.db.Ping(ctx); err != nil {
		overall = "degraded"
		status = http.StatusServiceUnavailable
		dbStatus = "error"
	}

	writeJSON(w, status, map[string]any{
		"status":   overall,
		"database": dbStatus,
		"cache":    h.cache.Health(ctx),
		"time":     time.Now().UTC(),
	})
}
