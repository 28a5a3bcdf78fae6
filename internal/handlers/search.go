package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type searchStore interface {
	ListCompanies(ctx context.Context, f db.CompanyFilter) ([]models.Company, int, error)
	SearchDeals(ctx context.Context, q string, limit int) ([]models.Deal, error)
}

type SearchHandler struct {
	store searchStore
	cache *cache.Manager
	log   zerolog.Logger
}

func NewSearchHandler(store searchStore, cacheManager *cache.Manager, log zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		store: store,
		cache: cacheManager,
		log:   log.With().Str("component", "search").Logger(),
	}
}

func (h *SearchHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/search", h.Search).Methods("GET")
}

const maxSuggestions = 6

type suggestion struct {
	Kind  string `json:"kind"` // company, ticker or deal
	Value string `json:"value"`
	Label string `json:"label"`
}

func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter q is required")
		return
	}

	key := cache.SearchResultsKey(query)
	var suggestions []suggestion
	if h.cache.Get(r.Context(), key, &suggestions) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
		return
	}

	suggestions = make([]suggestion, 0, maxSuggestions)
	seen := make(map[string]bool)
	add := func(kind, value, label string) {
		dedupe := kind + ":" + strings.ToLower(value)
		if len(suggestions) >= maxSuggestions || seen[dedupe] {
			return
		}
		seen[dedupe] = true
		suggestions = append(suggestions, suggestion{Kind: kind, Value: value, Label: label})
	}

	companies, _, err := h.store.ListCompanies(r.Context(), db.CompanyFilter{
		Query:    query,
		Page:     1,
		PageSize: maxSuggestions,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("Company search failed")
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	for _, c := range companies {
		if strings.HasPrefix(strings.ToLower(c.Ticker), strings.ToLower(query)) {
			add("ticker", c.Ticker, c.Ticker+" - "+c.Name)
		} else {
			add("company", c.Ticker, c.Name)
		}
	}

	deals, err := h.store.SearchDeals(r.Context(), query, maxSuggestions)
	if err != nil {
		h.log.Error().Err(err).Msg("Deal search failed")
		writeError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	for _, d := range deals {
		add("deal", d.ID, d.Title)
	}

	h.cache.SetKind(r.Context(), "search_results", key, suggestions)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}
