package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/repository"
	"github.com/atinyakov/TodoSync/internal/storage"
)

// TodoService manages todo items within a list. Every mutation checks list
// membership first, persists atomically, and broadcasts the domain event to
// the list topic only after the mutation committed.
type TodoService struct {
	store  *storage.Store
	todos  *repository.Repository[models.TodoItem]
	lists  *repository.Repository[models.TodoList]
	events Broadcaster
	log    *zap.Logger
}

// NewTodoService constructs the todo service.
func NewTodoService(store *storage.Store, todos *repository.Repository[models.TodoItem], lists *repository.Repository[models.TodoList], events Broadcaster, log *zap.Logger) *TodoService {
	return &TodoService{store: store, todos: todos, lists: lists, events: events, log: log}
}

// requireMember rejects callers that are not members of the list. A missing
// list is indistinguishable from a membership miss on purpose: non-members
// learn nothing about which list IDs exist.
func (s *TodoService) requireMember(listID, userID string) error {
	list, ok := s.lists.GetByID(listID)
	if !ok || !list.HasMember(userID) {
		return ErrForbidden
	}
	return nil
}

// Todos returns the items of a list, member-only.
func (s *TodoService) Todos(caller models.Identity, listID string) ([]models.TodoItem, error) {
	if err := s.requireMember(listID, caller.ID); err != nil {
		return nil, err
	}
	out := []models.TodoItem{}
	for _, t := range s.todos.GetAll() {
		if t.ListID == listID {
			out = append(out, t)
		}
	}
	return out, nil
}

// CreateTodo adds a new item in the Created state and broadcasts todoCreated.
func (s *TodoService) CreateTodo(caller models.Identity, listID, title string) (models.TodoItem, error) {
	if title == "" {
		return models.TodoItem{}, ErrInvalidInput
	}
	if err := s.requireMember(listID, caller.ID); err != nil {
		return models.TodoItem{}, err
	}

	todo := models.TodoItem{
		ID:        newID(),
		ListID:    listID,
		Title:     title,
		State:     models.StateCreated,
		CreatedBy: caller.ID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.todos.Add(todo); err != nil {
		return models.TodoItem{}, err
	}

	s.events.Broadcast(listID, EventTodoCreated, todoPayload{Todo: todo})
	return todo, nil
}

// TransitionTodo moves an item one step along its workflow. The lookup, the
// transition check, and the state change happen inside one atomic mutation, so
// a rejected transition persists nothing and broadcasts nothing.
func (s *TodoService) TransitionTodo(caller models.Identity, listID, todoID, direction string) (models.TodoItem, error) {
	if err := s.requireMember(listID, caller.ID); err != nil {
		return models.TodoItem{}, err
	}
	dir, ok := models.ParseDirection(direction)
	if !ok {
		return models.TodoItem{}, ErrInvalidInput
	}

	var updated models.TodoItem
	_, err := s.store.Mutate(func(doc models.Document) (models.Document, error) {
		for i := range doc.Todos {
			if doc.Todos[i].ID != todoID || doc.Todos[i].ListID != listID {
				continue
			}
			next, ok := models.Transition(doc.Todos[i].State, dir)
			if !ok {
				return models.Document{}, ErrNoTransition
			}
			doc.Todos[i].State = next
			doc.Todos[i].UpdatedAt = time.Now().UTC()
			updated = doc.Todos[i]
			return doc, nil
		}
		return models.Document{}, ErrNotFound
	})
	if err != nil {
		return models.TodoItem{}, err
	}

	s.events.Broadcast(listID, EventTodoUpdated, todoPayload{Todo: updated})
	return updated, nil
}

// DeleteTodo removes an item and broadcasts todoDeleted with the removed id.
func (s *TodoService) DeleteTodo(caller models.Identity, listID, todoID string) error {
	if err := s.requireMember(listID, caller.ID); err != nil {
		return err
	}

	todo, ok := s.todos.GetByID(todoID)
	if !ok || todo.ListID != listID {
		return ErrNotFound
	}
	removed, err := s.todos.RemoveByID(todoID)
	if err != nil {
		return err
	}
	if !removed {
		// Lost a race with a concurrent delete.
		return ErrNotFound
	}

	s.events.Broadcast(listID, EventTodoDeleted, todoDeletedPayload{TodoID: todoID})
	return nil
}
