package service

import "github.com/atinyakov/TodoSync/internal/models"

// Domain event names broadcast to list topics.
const (
	EventListCreated  = "listCreated"
	EventMemberJoined = "memberJoined"
	EventTodoCreated  = "todoCreated"
	EventTodoUpdated  = "todoUpdated"
	EventTodoDeleted  = "todoDeleted"
)

// Broadcaster fans a named event with a JSON payload out to every live
// subscriber of a topic. Implemented by broadcast.Broadcaster.
type Broadcaster interface {
	Broadcast(topic, event string, payload any)
}

type listPayload struct {
	List models.TodoList `json:"list"`
}

type memberJoinedPayload struct {
	UserID string `json:"userId"`
}

type todoPayload struct {
	Todo models.TodoItem `json:"todo"`
}

type todoDeletedPayload struct {
	TodoID string `json:"todoId"`
}
