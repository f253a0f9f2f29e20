// Package api provides the HTTP handlers for the handcloud control API.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Listing limits for the history endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// parseLimit reads ?limit=N, defaulting to DefaultLimit and capping at MaxLimit.
func parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return n, true
}

const timeLayout = "2006-01-02T15:04:05Z07:00"
