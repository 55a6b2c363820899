// Package http exposes the ledger as a JSON API. Transport concerns only:
// parsing, status mapping, caching and rate limiting. All semantics live in
// the ledger package.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finbook/internal/core"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON serializes v with the proper content type. Encoding failures are
// logged; headers are already gone at that point.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses. NotFound
// stays deliberately vague: absent and foreign-owned look identical.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrConflict):
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrInvalidArgument):
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Internal error", "error", err,
			"method", r.Method, "path", r.URL.Path)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
