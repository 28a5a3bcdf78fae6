package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type precedentStore interface {
	ListPrecedents(ctx context.Context, f db.PrecedentFilter) ([]models.PrecedentDeal, error)
	GetPrecedentSummary(ctx context.Context, f db.PrecedentFilter) (*db.PrecedentSummary, error)
}

type PrecedentsHandler struct {
	store precedentStore
	cache *cache.Manager
	log   zerolog.Logger
}

func NewPrecedentsHandler(store precedentStore, cacheManager *cache.Manager, log zerolog.Logger) *PrecedentsHandler {
	return &PrecedentsHandler{
		store: store,
		cache: cacheManager,
		log:   log.With().Str("component", "precedents").Logger(),
	}
}

func (h *PrecedentsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/precedents", h.List).Methods("GET")
	router.HandleFunc("/precedents/summary", h.Summary).Methods("GET")
}

func precedentFilter(r *http.Request) db.PrecedentFilter {
	q := r.URL.Query()
	return db.PrecedentFilter{
		Sector: q.Get("sector"),
		Region: q.Get("region"),
		Status: q.Get("status"),
		Limit:  clamp(intParam(q.Get("limit"), 50), 1, 200),
	}
}

func (h *PrecedentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := precedentFilter(r)
	key := cache.PrecedentsKey(cache.HashFilters(map[string]string{
		"sector": filter.Sector,
		"region": filter.Region,
		"status": filter.Status,
		"limit":  r.URL.Query().Get("limit"),
	}))

	var deals []models.PrecedentDeal
	if h.cache.Get(r.Context(), key, &deals) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, map[string]any{"precedents": deals})
		return
	}

	deals, err := h.store.ListPrecedents(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Precedent listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list precedents")
		return
	}

	h.cache.SetKind(r.Context(), "precedents", key, deals)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, map[string]any{"precedents": deals})
}

func (h *PrecedentsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter := precedentFilter(r)
	key := cache.PrecedentsKey(cache.HashFilters(map[string]string{
		"view":   "summary",
		"sector": filter.Sector,
		"region": filter.Region,
		"status": filter.Status,
	}))

	var summary db.PrecedentSummary
	if h.cache.Get(r.Context(), key, &summary) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, summary)
		return
	}

	found, err := h.store.GetPrecedentSummary(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Precedent summary failed")
		writeError(w, http.StatusInternalServerError, "Failed to summarize precedents")
		return
	}

	h.cache.SetKind(r.Context(), "precedents", key, found)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, found)
}
