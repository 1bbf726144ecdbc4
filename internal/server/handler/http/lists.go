package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/middleware"
	"github.com/atinyakov/TodoSync/internal/models"
)

// ListService defines the list operations required by the HTTP handlers.
type ListService interface {
	CreateList(caller models.Identity, name string) (models.TodoList, error)
	JoinList(caller models.Identity, key string) (models.TodoList, error)
	ListsFor(userID string) []models.TodoList
	GetList(listID string) (models.TodoList, bool)
}

// Streamer serves a long-lived event stream for one list topic. Implemented by
// broadcast.Broadcaster.
type Streamer interface {
	Serve(ctx context.Context, topic string, w io.Writer) error
}

// ListHandler handles list management and the per-list event stream.
type ListHandler struct {
	ListService ListService
	Streamer    Streamer
	Log         *zap.Logger
}

type createListRequest struct {
	Name string `json:"name"`
}

type joinListRequest struct {
	Key string `json:"key"`
}

// joinListResponse carries the joined list without its membership roster.
type joinListResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Key  string `json:"key"`
}

// Create handles list creation. The caller becomes the first member.
func (h *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	list, err := h.ListService.CreateList(caller, req.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, list)
}

// Join adds the caller to the list matching the submitted invite key.
func (h *ListHandler) Join(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req joinListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	list, err := h.ListService.JoinList(caller, req.Key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, joinListResponse{ID: list.ID, Name: list.Name, Key: list.Key})
}

// List returns every list the caller is a member of.
func (h *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	respondJSON(w, http.StatusOK, h.ListService.ListsFor(caller.ID))
}

// Stream opens the server-sent-events channel for one list. Membership is
// checked before the stream is handed to the broadcaster, which then owns the
// subscription until the client disconnects.
func (h *ListHandler) Stream(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}
	listID := chi.URLParam(r, "listID")

	list, found := h.ListService.GetList(listID)
	if !found {
		respondError(w, http.StatusNotFound, "list not found")
		return
	}
	if !list.HasMember(caller.ID) {
		respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.Streamer.Serve(r.Context(), listID, w); err != nil {
		// The response is already streaming; nothing to send back.
		h.Log.Debug("event stream ended", zap.String("listID", listID), zap.Error(err))
	}
}
