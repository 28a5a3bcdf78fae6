package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type companyStore interface {
	ListCompanies(ctx context.Context, f db.CompanyFilter) ([]models.Company, int, error)
	GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error)
	UpdateCompany(ctx context.Context, ticker string, u db.CompanyUpdates) error
	ListTimeseries(ctx context.Context, ticker string, days int) ([]models.PricePoint, error)
	ListNews(ctx context.Context, ticker string, limit int) ([]models.NewsItem, error)
	ListOwnership(ctx context.Context, ticker string) ([]models.OwnershipHolder, error)
}

type CompaniesHandler struct {
	store companyStore
	cache *cache.Manager
	log   zerolog.Logger
}

func NewCompaniesHandler(store companyStore, cacheManager *cache.Manager, log zerolog.Logger) *CompaniesHandler {
	return &CompaniesHandler{
		store: store,
		cache: cacheManager,
		log:   log.With().Str("component", "companies").Logger(),
	}
}

func (h *CompaniesHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/companies", h.List).Methods("GET")
	router.HandleFunc("/companies/{ticker}", h.Get).Methods("GET")
	router.HandleFunc("/companies/{ticker}", h.Update).Methods("PUT")
	router.HandleFunc("/companies/{ticker}/timeseries", h.Timeseries).Methods("GET")
	router.HandleFunc("/companies/{ticker}/ownership", h.Ownership).Methods("GET")
	router.HandleFunc("/companies/{ticker}/news", h.News).Methods("GET")
}

type companyListResponse struct {
	Companies []models.Company `json:"companies"`
	Total     int              `json:"total"`
	Page      int              `json:"page"`
	PageSize  int              `json:"page_size"`
}

func (h *CompaniesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.CompanyFilter{
		Sector:   q.Get("sector"),
		Query:    q.Get("q"),
		Page:     intParam(q.Get("page"), 1),
		PageSize: clamp(intParam(q.Get("page_size"), 20), 1, 100),
	}
	filter.MinMarketCap, _ = strconv.ParseFloat(q.Get("min_market_cap"), 64)
	filter.MaxMarketCap, _ = strconv.ParseFloat(q.Get("max_market_cap"), 64)

	key := cache.CompaniesListKey(cache.HashFilters(map[string]string{
		"sector":         filter.Sector,
		"q":              filter.Query,
		"min_market_cap": q.Get("min_market_cap"),
		"max_market_cap": q.Get("max_market_cap"),
		"page":           strconv.Itoa(filter.Page),
		"page_size":      strconv.Itoa(filter.PageSize),
	}))

	var resp companyListResponse
	if h.cache.Get(r.Context(), key, &resp) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	companies, total, err := h.store.ListCompanies(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Company listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list companies")
		return
	}

	resp = companyListResponse{
		Companies: companies,
		Total:     total,
		Page:      filter.Page,
		PageSize:  filter.PageSize,
	}
	h.cache.SetKind(r.Context(), "companies_list", key, resp)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

func (h *CompaniesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	key := cache.CompanyDetailKey(ticker)

	var company models.Company
	if h.cache.Get(r.Context(), key, &company) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, company)
		return
	}

	found, err := h.store.GetCompanyByTicker(r.Context(), ticker)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Company lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load company")
		return
	}

	h.cache.SetKind(r.Context(), "company_detail", key, found)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, found)
}

func (h *CompaniesHandler) Update(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])

	var updates db.CompanyUpdates
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.UpdateCompany(r.Context(), ticker, updates); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Company update failed")
		writeError(w, http.StatusInternalServerError, "Failed to update company")
		return
	}

	// Drop every cached view of this ticker plus any list that may contain it.
	h.cache.InvalidateCompany(r.Context(), ticker)
	h.cache.DeleteMatching(r.Context(), "companies:list:*")
	h.cache.Delete(r.Context(), cache.CompsDetailKey(ticker))

	company, err := h.store.GetCompanyByTicker(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load company")
		return
	}
	writeJSON(w, http.StatusOK, company)
}

func (h *CompaniesHandler) Timeseries(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	days := clamp(intParam(r.URL.Query().Get("days"), 90), 1, 365)

	type timeseriesResponse struct {
		Ticker string              `json:"ticker"`
		Days   int                 `json:"days"`
		Points []models.PricePoint `json:"points"`
	}

	key := cache.CompanyTimeseriesKey(ticker, days)
	var resp timeseriesResponse
	if h.cache.Get(r.Context(), key, &resp) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	points, err := h.store.ListTimeseries(r.Context(), ticker, days)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Timeseries query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load timeseries")
		return
	}

	resp = timeseriesResponse{Ticker: ticker, Days: days, Points: points}
	h.cache.SetKind(r.Context(), "company_timeseries", key, resp)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

func (h *CompaniesHandler) Ownership(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	key := cache.CompanyOwnershipKey(ticker)

	var holders []models.OwnershipHolder
	if h.cache.Get(r.Context(), key, &holders) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, holders)
		return
	}

	holders, err := h.store.ListOwnership(r.Context(), ticker)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Ownership query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load ownership")
		return
	}

	h.cache.SetKind(r.Context(), "company_ownership", key, holders)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, holders)
}

func (h *CompaniesHandler) News(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	limit := clamp(intParam(r.URL.Query().Get("limit"), 20), 1, 100)

	key := cache.CompanyNewsKey(ticker, limit)
	var items []models.NewsItem
	if h.cache.Get(r.Context(), key, &items) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, items)
		return
	}

	items, err := h.store.ListNews(r.Context(), ticker, limit)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("News query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load news")
		return
	}

	h.cache.SetKind(r.Context(), "company_news", key, items)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, items)
}

func intParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func clamp(n, min, max int) int {
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
