package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type dealStore interface {
	ListDeals(ctx context.Context, f db.DealFilter) ([]models.Deal, int, error)
	GetDealByID(ctx context.Context, id string) (*models.Deal, error)
	RecentDeals(ctx context.Context, limit int) ([]models.Deal, error)
}

type DealsHandler struct {
	store dealStore
	cache *cache.Manager
	log   zerolog.Logger
}

func NewDealsHandler(store dealStore, cacheManager *cache.Manager, log zerolog.Logger) *DealsHandler {
	return &DealsHandler{
		store: store,
		cache: cacheManager,
		log:   log.With().Str("component", "deals").Logger(),
	}
}

func (h *DealsHandler) RegisterRoutes(router *mux.Router) {
	// /deals/recent must register before /deals/{id} so "recent" is not
	// swallowed as an ID.
	router.HandleFunc("/deals/recent", h.Recent).Methods("GET")
	router.HandleFunc("/deals", h.List).Methods("GET")
	router.HandleFunc("/deals/{id}", h.Get).Methods("GET")
}

// Deal value buckets in millions USD.
var sizeBuckets = map[string][2]float64{
	"<500M":   {0, 500},
	"500M-1B": {500, 1000},
	"1B-10B":  {1000, 10000},
	"10B-50B": {10000, 50000},
	"50B+":    {50000, 0},
}

type dealListResponse struct {
	Deals    []models.Deal `json:"deals"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

func (h *DealsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.DealFilter{
		Industry: q.Get("industry"),
		Status:   q.Get("status"),
		Query:    q.Get("q"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: clamp(intParam(q.Get("page_size"), 20), 1, 100),
	}

	if bucket := q.Get("size"); bucket != "" {
		bounds, ok := sizeBuckets[bucket]
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown size bucket")
			return
		}
		filter.ValueMin, filter.ValueMax = bounds[0], bounds[1]
	}
	if raw := q.Get("start_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartDate = &t
	}
	if raw := q.Get("end_date"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		filter.EndDate = &t
	}

	key := cache.DealsListKey(cache.HashFilters(map[string]string{
		"industry":   filter.Industry,
		"status":     filter.Status,
		"size":       q.Get("size"),
		"start_date": q.Get("start_date"),
		"end_date":   q.Get("end_date"),
		"q":          filter.Query,
		"page":       strconv.Itoa(filter.Page),
		"page_size":  strconv.Itoa(filter.PageSize),
	}))

	var resp dealListResponse
	if h.cache.Get(r.Context(), key, &resp) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	deals, total, err := h.store.ListDeals(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Deal listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list deals")
		return
	}

	resp = dealListResponse{Deals: deals, Total: total, Page: filter.Page, PageSize: filter.PageSize}
	h.cache.SetKind(r.Context(), "deals_list", key, resp)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

func (h *DealsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	key := cache.DealDetailKey(id)

	var deal models.Deal
	if h.cache.Get(r.Context(), key, &deal) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, deal)
		return
	}

	found, err := h.store.GetDealByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Deal not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("deal_id", id).Msg("Deal lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load deal")
		return
	}

	h.cache.SetKind(r.Context(), "deal_detail", key, found)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, found)
}

func (h *DealsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := clamp(intParam(r.URL.Query().Get("limit"), 10), 1, 50)

	deals, err := h.store.RecentDeals(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Recent deals query failed")
		writeError(w, http.StatusInternalServerError, "Failed to list recent deals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"deals": deals})
}
