// Package models defines the core data structures for users, lists, and todo items.
package models

import "time"

// Identity is the verified caller identity attached to every authenticated request.
// It is produced by the auth layer and trusted downstream without re-verification.
type Identity struct {
	// ID is the unique identifier of the caller.
	ID string `json:"id"`
	// Username is the unique login name of the caller.
	Username string `json:"username"`
}

// User represents an application user capable of creating and joining lists.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the unique login name chosen by the user.
	Username string `json:"username"`
	// Token is the latest issued auth token (rotated on every authorize).
	Token string `json:"token"`
}

// TodoList is a collaborative list grouping related todos and members.
type TodoList struct {
	// ID is the unique identifier of the list.
	ID string `json:"id"`
	// Name is the human-readable list name.
	Name string `json:"name"`
	// Key is the shared invite key that allows users to join the list.
	Key string `json:"key"`
	// Members holds the IDs of users who belong to the list.
	Members []string `json:"members"`
}

// HasMember reports whether the user with the given ID belongs to the list.
func (l TodoList) HasMember(userID string) bool {
	for _, m := range l.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// TodoItem is a single task within a list, moved through workflow states.
type TodoItem struct {
	// ID is the unique identifier of the todo.
	ID string `json:"id"`
	// ListID is the owning list this todo belongs to.
	ListID string `json:"listId"`
	// Title is a brief description of the task.
	Title string `json:"title"`
	// State is the current workflow state of the task.
	State ItemState `json:"state"`
	// CreatedBy is the ID of the user who created the todo.
	CreatedBy string `json:"createdBy"`
	// UpdatedAt is the time the todo was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Document is the entire persisted dataset, serialized to one JSON file on disk.
type Document struct {
	// Users holds all registered users.
	Users []User `json:"users"`
	// Lists holds all lists, regardless of ownership.
	Lists []TodoList `json:"lists"`
	// Todos holds all todos across all lists.
	Todos []TodoItem `json:"todos"`
}

// EmptyDocument returns a fresh document with empty (non-nil) collections so the
// serialized form carries `[]` rather than `null`.
func EmptyDocument() Document {
	return Document{
		Users: []User{},
		Lists: []TodoList{},
		Todos: []TodoItem{},
	}
}
