package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/db"
	"github.com/deallens/deallens/internal/models"
)

type alertStore interface {
	ListAlerts(ctx context.Context, f db.AlertFilter) ([]models.Alert, int, int, error)
	GetAlert(ctx context.Context, id string) (*models.Alert, error)
	CreateAlert(ctx context.Context, a *models.Alert) error
	MarkAlertRead(ctx context.Context, id string) (bool, error)
	MarkAllAlertsRead(ctx context.Context) (int64, error)
	DeleteAlert(ctx context.Context, id string) (bool, error)
	ClearAlerts(ctx context.Context) error
}

type AlertsHandler struct {
	store alertStore
	log   zerolog.Logger
}

func NewAlertsHandler(store alertStore, log zerolog.Logger) *AlertsHandler {
	return &AlertsHandler{
		store: store,
		log:   log.With().Str("component", "alerts").Logger(),
	}
}

func (h *AlertsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/alerts", h.List).Methods("GET")
	router.HandleFunc("/alerts", h.Create).Methods("POST")
	router.HandleFunc("/alerts/mark-all-read", h.MarkAllRead).Methods("POST")
	router.HandleFunc("/alerts/clear", h.Clear).Methods("POST")
	router.HandleFunc("/alerts/{id}", h.Get).Methods("GET")
	router.HandleFunc("/alerts/{id}", h.Delete).Methods("DELETE")
	router.HandleFunc("/alerts/{id}/read", h.MarkRead).Methods("PUT")
}

func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := db.AlertFilter{
		Limit:  intParam(q.Get("limit"), 0),
		Offset: 0,
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Offset = n
		}
	}
	if raw := q.Get("unread"); raw != "" {
		unread := raw == "true" || raw == "1"
		filter.Unread = &unread
	}

	alerts, total, unread, err := h.store.ListAlerts(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Alert listing failed")
		writeError(w, http.StatusInternalServerError, "Failed to list alerts")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"alerts":       alerts,
		"total":        total,
		"unread_count": unread,
	})
}

func (h *AlertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	alert, err := h.store.GetAlert(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load alert")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Body     string `json:"body"`
		Ticker   string `json:"ticker"`
		Severity string `json:"severity"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.Severity == "" {
		req.Severity = "info"
	}
	if req.Type == "" {
		req.Type = "custom"
	}

	alert := &models.Alert{
		ID:        "alert-" + uuid.NewString()[:8],
		Title:     req.Title,
		Body:      req.Body,
		Ticker:    strings.ToUpper(req.Ticker),
		Severity:  req.Severity,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.CreateAlert(r.Context(), alert); err != nil {
		h.log.Error().Err(err).Msg("Alert insert failed")
		writeError(w, http.StatusInternalServerError, "Failed to create alert")
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

func (h *AlertsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	ok, err := h.store.MarkAlertRead(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update alert")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}

func (h *AlertsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.MarkAllAlertsRead(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marked_read": n})
}

func (h *AlertsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.DeleteAlert(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete alert")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AlertsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ClearAlerts(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear alerts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
