// Package handlers wires the HTTP surface: request parsing, cache lookups,
// store calls and JSON responses. Handlers stay thin; domain math lives in
// internal/valuation and persistence in internal/db.
package handlers

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
