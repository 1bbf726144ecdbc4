package http

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/atinyakov/TodoSync/internal/middleware"
	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/service"
)

// fakeTodoService implements TodoService with canned results.
type fakeTodoService struct {
	todos         []models.TodoItem
	todosErr      error
	createTodo    models.TodoItem
	createErr     error
	transitioned  models.TodoItem
	transitionErr error
	deleteErr     error

	gotListID    string
	gotTodoID    string
	gotDirection string
}

func (f *fakeTodoService) Todos(caller models.Identity, listID string) ([]models.TodoItem, error) {
	f.gotListID = listID
	return f.todos, f.todosErr
}

func (f *fakeTodoService) CreateTodo(caller models.Identity, listID, title string) (models.TodoItem, error) {
	f.gotListID = listID
	return f.createTodo, f.createErr
}

func (f *fakeTodoService) TransitionTodo(caller models.Identity, listID, todoID, direction string) (models.TodoItem, error) {
	f.gotListID, f.gotTodoID, f.gotDirection = listID, todoID, direction
	return f.transitioned, f.transitionErr
}

func (f *fakeTodoService) DeleteTodo(caller models.Identity, listID, todoID string) error {
	f.gotListID, f.gotTodoID = listID, todoID
	return f.deleteErr
}

// serveTodo routes the request through chi so URL params resolve, with a fixed
// caller identity already in context.
func serveTodo(svc *fakeTodoService, method, target string, body io.Reader) *httptest.ResponseRecorder {
	h := &TodoHandler{TodoService: svc}
	r := chi.NewRouter()
	r.Get("/todos/{listID}", h.List)
	r.Post("/todos/{listID}", h.Create)
	r.Post("/todos/{listID}/{todoID}/transition", h.Transition)
	r.Delete("/todos/{listID}/{todoID}", h.Delete)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, body)
	ctx := middleware.ContextWithIdentity(req.Context(), models.Identity{ID: "u1", Username: "alice"})
	r.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestTodoHandler_Create(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeTodoService
		expectedCode int
	}{
		{
			name:         "invalid JSON",
			body:         `{`,
			service:      &fakeTodoService{},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing title",
			body:         `{"title":""}`,
			service:      &fakeTodoService{createErr: service.ErrInvalidInput},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "not a member",
			body:         `{"title":"Buy milk"}`,
			service:      &fakeTodoService{createErr: service.ErrForbidden},
			expectedCode: http.StatusForbidden,
		},
		{
			name:         "success",
			body:         `{"title":"Buy milk"}`,
			service:      &fakeTodoService{createTodo: models.TodoItem{ID: "t1", Title: "Buy milk"}},
			expectedCode: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveTodo(tt.service, "POST", "/todos/l1", bytes.NewBufferString(tt.body))
			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTodoHandler_Transition(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		service      *fakeTodoService
		expectedCode int
	}{
		{
			name:         "bad direction",
			body:         `{"direction":"sideways"}`,
			service:      &fakeTodoService{transitionErr: service.ErrInvalidInput},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "no valid transition",
			body:         `{"direction":"forward"}`,
			service:      &fakeTodoService{transitionErr: service.ErrNoTransition},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "missing todo",
			body:         `{"direction":"forward"}`,
			service:      &fakeTodoService{transitionErr: service.ErrNotFound},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "success",
			body:         `{"direction":"forward"}`,
			service:      &fakeTodoService{transitioned: models.TodoItem{ID: "t1", State: models.StateInProgress}},
			expectedCode: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveTodo(tt.service, "POST", "/todos/l1/t1/transition", bytes.NewBufferString(tt.body))
			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
			if tt.service.gotListID != "l1" || tt.service.gotTodoID != "t1" {
				t.Errorf("URL params not forwarded: listID=%q todoID=%q",
					tt.service.gotListID, tt.service.gotTodoID)
			}
		})
	}
}

func TestTodoHandler_Delete(t *testing.T) {
	svc := &fakeTodoService{}
	rec := serveTodo(svc, "DELETE", "/todos/l1/t1", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	svc = &fakeTodoService{deleteErr: service.ErrNotFound}
	rec = serveTodo(svc, "DELETE", "/todos/l1/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestTodoHandler_List(t *testing.T) {
	svc := &fakeTodoService{todos: []models.TodoItem{{ID: "t1"}, {ID: "t2"}}}
	rec := serveTodo(svc, "GET", "/todos/l1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"t2"`)) {
		t.Errorf("expected body to contain both todos, got %s", rec.Body.String())
	}
}
