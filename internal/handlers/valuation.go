package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/deallens/deallens/internal/valuation"
)

type ValuationHandler struct {
	log zerolog.Logger
}

func NewValuationHandler(log zerolog.Logger) *ValuationHandler {
	return &ValuationHandler{log: log.With().Str("component", "valuation").Logger()}
}

func (h *ValuationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/valuation/dcf", h.DCF).Methods("POST")
	router.HandleFunc("/valuation/lbo", h.LBO).Methods("POST")
}

func (h *ValuationHandler) DCF(w http.ResponseWriter, r *http.Request) {
	// Decoding over the defaults lets callers send only the fields they
	// want to override.
	in := valuation.DefaultDCFInputs()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := valuation.CalculateDCF(in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ValuationHandler) LBO(w http.ResponseWriter, r *http.Request) {
	in := valuation.DefaultLBOInputs()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := valuation.CalculateLBO(in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}
