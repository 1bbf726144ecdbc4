package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/TodoSync/internal/middleware"
	"github.com/atinyakov/TodoSync/internal/models"
)

// TodoService defines the todo operations required by the HTTP handlers.
type TodoService interface {
	Todos(caller models.Identity, listID string) ([]models.TodoItem, error)
	CreateTodo(caller models.Identity, listID, title string) (models.TodoItem, error)
	TransitionTodo(caller models.Identity, listID, todoID, direction string) (models.TodoItem, error)
	DeleteTodo(caller models.Identity, listID, todoID string) error
}

// TodoHandler handles todo item requests within a list.
type TodoHandler struct {
	TodoService TodoService
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type transitionRequest struct {
	Direction string `json:"direction"`
}

// List returns all items of a list.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	todos, err := h.TodoService.Todos(caller, chi.URLParam(r, "listID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, todos)
}

// Create adds a new item to a list.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.TodoService.CreateTodo(caller, chi.URLParam(r, "listID"), req.Title)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, todo)
}

// Transition moves an item one workflow step forward or backward.
func (h *TodoHandler) Transition(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request")
		return
	}

	todo, err := h.TodoService.TransitionTodo(caller,
		chi.URLParam(r, "listID"), chi.URLParam(r, "todoID"), req.Direction)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, todo)
}

// Delete removes an item from a list.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	err := h.TodoService.DeleteTodo(caller, chi.URLParam(r, "listID"), chi.URLParam(r, "todoID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
