package http

import (
	"encoding/json"
	"net/http"

	"github.com/atinyakov/TodoSync/internal/models"
)

// AuthService defines the authentication operations required by the HTTP
// handlers.
type AuthService interface {
	// Register creates a new user and issues its first token.
	Register(username string) (models.User, error)
	// Authorize rotates and returns the token for an existing user.
	Authorize(username string) (models.User, error)
}

// AuthHandler handles registration and authorization requests.
type AuthHandler struct {
	// AuthService performs the underlying authentication operations.
	AuthService AuthService
}

// credentialsRequest is the JSON payload for both register and authorize.
type credentialsRequest struct {
	Username string `json:"username"`
}

// Register handles user registration. It expects a JSON body with a non-empty
// "username" and responds with the created user, including its token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.AuthService.Register(req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Authorize handles token rotation for an existing user and responds with
// the user's id, username, and fresh token.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.AuthService.Authorize(req.Username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
