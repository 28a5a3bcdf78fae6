package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/cache"
	"github.com/deallens/deallens/internal/models"
)

type compsStore interface {
	GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error)
	ListPeers(ctx context.Context, sector, excludeTicker string, limit int) ([]models.Company, error)
}

type CompsHandler struct {
	store compsStore
	cache *cache.Manager
	log   zerolog.Logger
}

func NewCompsHandler(store compsStore, cacheManager *cache.Manager, log zerolog.Logger) *CompsHandler {
	return &CompsHandler{
		store: store,
		cache: cacheManager,
		log:   log.With().Str("component", "comps").Logger(),
	}
}

func (h *CompsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/comps", h.List).Methods("GET")
	router.HandleFunc("/comps/{ticker}", h.Detail).Methods("GET")
}

type metricSpread struct {
	Median float64 `json:"median"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
}

type compsSummary struct {
	Count        int          `json:"count"`
	AvgMarketCap float64      `json:"avg_market_cap"`
	PERatio      metricSpread `json:"pe_ratio"`
	EVEBITDA     metricSpread `json:"ev_ebitda"`
	EVRevenue    metricSpread `json:"ev_revenue"`
}

type compsListResponse struct {
	Sector  string           `json:"sector"`
	Peers   []models.Company `json:"peers"`
	Summary compsSummary     `json:"summary"`
}

func (h *CompsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sector := q.Get("sector")
	ticker := strings.ToUpper(q.Get("ticker"))
	exclude := ""

	if sector == "" && ticker == "" {
		writeError(w, http.StatusBadRequest, "Provide a sector or ticker")
		return
	}
	if ticker != "" {
		company, err := h.store.GetCompanyByTicker(r.Context(), ticker)
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		if err != nil {
			h.log.Error().Err(err).Str("ticker", ticker).Msg("Company lookup failed")
			writeError(w, http.StatusInternalServerError, "Failed to build peer set")
			return
		}
		sector = company.Sector
		exclude = ticker
	}

	limit := clamp(intParam(q.Get("limit"), 15), 1, 50)
	key := cache.CompsKey(cache.HashFilters(map[string]string{
		"sector":  sector,
		"exclude": exclude,
		"limit":   q.Get("limit"),
	}))

	var resp compsListResponse
	if h.cache.Get(r.Context(), key, &resp) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	peers, err := h.store.ListPeers(r.Context(), sector, exclude, limit)
	if err != nil {
		h.log.Error().Err(err).Str("sector", sector).Msg("Peer query failed")
		writeError(w, http.StatusInternalServerError, "Failed to build peer set")
		return
	}

	resp = compsListResponse{Sector: sector, Peers: peers, Summary: summarizePeers(peers)}
	h.cache.SetKind(r.Context(), "comps", key, resp)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

type compsDetailResponse struct {
	Company            models.Company   `json:"company"`
	Peers              []models.Company `json:"peers"`
	Summary            compsSummary     `json:"summary"`
	EVEBITDAPremiumPct float64          `json:"ev_ebitda_premium_pct"`
	PEPremiumPct       float64          `json:"pe_premium_pct"`
	ImpliedValueRange  *valueRange      `json:"implied_value_range,omitempty"`
}

type valueRange struct {
	Low  float64 `json:"low"`
	Mid  float64 `json:"mid"`
	High float64 `json:"high"`
}

func (h *CompsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	key := cache.CompsDetailKey(ticker)

	var resp compsDetailResponse
	if h.cache.Get(r.Context(), key, &resp) == cache.Hit {
		w.Header().Set("X-Cache-Status", "HIT")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	company, err := h.store.GetCompanyByTicker(r.Context(), ticker)
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Company not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Company lookup failed")
		writeError(w, http.StatusInternalServerError, "Failed to load company")
		return
	}

	peers, err := h.store.ListPeers(r.Context(), company.Sector, ticker, 15)
	if err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Peer query failed")
		writeError(w, http.StatusInternalServerError, "Failed to build peer set")
		return
	}

	summary := summarizePeers(peers)
	resp = compsDetailResponse{
		Company:            *company,
		Peers:              peers,
		Summary:            summary,
		EVEBITDAPremiumPct: premiumPct(company.EVEBITDA, summary.EVEBITDA.Median),
		PEPremiumPct:       premiumPct(company.PERatio, summary.PERatio.Median),
	}

	// Implied value: reprice the company's market cap at the peer EV/EBITDA
	// quartiles. Only meaningful when the company trades on that multiple.
	if company.EVEBITDA > 0 && summary.EVEBITDA.Median > 0 {
		resp.ImpliedValueRange = &valueRange{
			Low:  round1(company.MarketCap * summary.EVEBITDA.P25 / company.EVEBITDA),
			Mid:  round1(company.MarketCap * summary.EVEBITDA.Median / company.EVEBITDA),
			High: round1(company.MarketCap * summary.EVEBITDA.P75 / company.EVEBITDA),
		}
	}

	h.cache.SetKind(r.Context(), "comps", key, resp)

	w.Header().Set("X-Cache-Status", "MISS")
	writeJSON(w, http.StatusOK, resp)
}

func summarizePeers(peers []models.Company) compsSummary {
	s := compsSummary{Count: len(peers)}
	if len(peers) == 0 {
		return s
	}

	var capSum float64
	var pes, evEbitdas, evRevenues []float64
	for _, p := range peers {
		capSum += p.MarketCap
		if p.PERatio > 0 {
			pes = append(pes, p.PERatio)
		}
		if p.EVEBITDA > 0 {
			evEbitdas = append(evEbitdas, p.EVEBITDA)
		}
		if p.EVRevenue > 0 {
			evRevenues = append(evRevenues, p.EVRevenue)
		}
	}

	s.AvgMarketCap = round1(capSum / float64(len(peers)))
	s.PERatio = spread(pes)
	s.EVEBITDA = spread(evEbitdas)
	s.EVRevenue = spread(evRevenues)
	return s
}

func spread(values []float64) metricSpread {
	return metricSpread{
		Median: percentile(values, 0.50),
		P25:    percentile(values, 0.25),
		P75:    percentile(values, 0.75),
	}
}

// percentile linearly interpolates between the two nearest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return round2f(sorted[lo])
	}
	frac := rank - float64(lo)
	return round2f(sorted[lo] + frac*(sorted[hi]-sorted[lo]))
}

func premiumPct(value, benchmark float64) float64 {
	if value <= 0 || benchmark <= 0 {
		return 0
	}
	return round1((value - benchmark) / benchmark * 100)
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2f(x float64) float64 {
	return math.Round(x*100) / 100
}
