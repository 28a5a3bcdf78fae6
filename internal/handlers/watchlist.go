package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/auth"
	"github.com/deallens/deallens/internal/models"
)

type watchlistStore interface {
	ListWatchlist(ctx context.Context, userID string) ([]models.WatchlistEntry, error)
	AddWatchlistEntry(ctx context.Context, e *models.WatchlistEntry) error
	RemoveWatchlistEntry(ctx context.Context, userID, ticker string) error
	GetCompanyByTicker(ctx context.Context, ticker string) (*models.Company, error)
}

type WatchlistHandler struct {
	store watchlistStore
	log   zerolog.Logger
}

func NewWatchlistHandler(store watchlistStore, log zerolog.Logger) *WatchlistHandler {
	return &WatchlistHandler{
		store: store,
		log:   log.With().Str("component", "watchlist").Logger(),
	}
}

func (h *WatchlistHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/watchlist", h.List).Methods("GET")
	router.HandleFunc("/watchlist", h.Add).Methods("POST")
	router.HandleFunc("/watchlist/{ticker}", h.Remove).Methods("DELETE")
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entries, err := h.store.ListWatchlist(r.Context(), claims.UserID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", claims.UserID).Msg("Watchlist query failed")
		writeError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req struct {
		Ticker             string  `json:"ticker"`
		TargetPrice        float64 `json:"target_price"`
		Notes              string  `json:"notes"`
		PriceAlertsEnabled bool    `json:"price_alerts_enabled"`
		NewsAlertsEnabled  bool    `json:"news_alerts_enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	if _, err := h.store.GetCompanyByTicker(r.Context(), ticker); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Company not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}

	entry := &models.WatchlistEntry{
		ID:                 uuid.NewString(),
		UserID:             claims.UserID,
		Ticker:             ticker,
		TargetPrice:        req.TargetPrice,
		Notes:              req.Notes,
		PriceAlertsEnabled: req.PriceAlertsEnabled,
		NewsAlertsEnabled:  req.NewsAlertsEnabled,
	}
	if err := h.store.AddWatchlistEntry(r.Context(), entry); err != nil {
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Watchlist insert failed")
		writeError(w, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ticker := strings.ToUpper(mux.Vars(r)["ticker"])
	if err := h.store.RemoveWatchlistEntry(r.Context(), claims.UserID, ticker); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "Ticker not on watchlist")
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Watchlist delete failed")
		writeError(w, http.StatusInternalServerError, "Failed to update watchlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
