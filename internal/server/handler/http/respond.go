// Package http provides the HTTP handlers and routing for the todo sync API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/atinyakov/TodoSync/internal/service"
)

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

// respondServiceError maps service-level failures to HTTP statuses. Anything
// unrecognized is a 500: storage failures must not leak internals to callers.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid input")
	case errors.Is(err, service.ErrNoTransition):
		respondError(w, http.StatusBadRequest, "no valid transition")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrUserExists):
		respondError(w, http.StatusConflict, "user already exists")
	default:
		respondError(w, http.StatusInternalServerError, "server error")
	}
}
