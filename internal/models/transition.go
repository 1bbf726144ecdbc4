package models

// ItemState is the workflow state of a todo item. The string values are the
// persisted and wire representation.
type ItemState string

const (
	// StateCreated means the item has not been started yet.
	StateCreated ItemState = "TODO"
	// StateInProgress means work on the item is underway.
	StateInProgress ItemState = "ONGOING"
	// StateCompleted means the item is done.
	StateCompleted ItemState = "DONE"
)

// Direction selects which way an item moves along its workflow.
type Direction string

const (
	// Forward advances the item one step (Created → InProgress → Completed).
	Forward Direction = "forward"
	// Backward reverts the item one step (Completed → InProgress → Created).
	Backward Direction = "backward"
)

// ParseDirection parses the wire representation of a transition direction.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Forward:
		return Forward, true
	case Backward:
		return Backward, true
	}
	return "", false
}

// transitions is the full workflow table. An empty entry means no transition is
// defined in that direction.
var transitions = map[ItemState]struct {
	next     ItemState
	previous ItemState
}{
	StateCreated:    {next: StateInProgress},
	StateInProgress: {next: StateCompleted, previous: StateCreated},
	StateCompleted:  {previous: StateInProgress},
}

// Transition returns the state reached by moving dir from state. ok is false when
// the workflow defines no transition in that direction, including for unknown
// states; callers must treat that as a request error and not persist anything.
func Transition(state ItemState, dir Direction) (next ItemState, ok bool) {
	rule, known := transitions[state]
	if !known {
		return "", false
	}
	switch dir {
	case Forward:
		next = rule.next
	case Backward:
		next = rule.previous
	}
	return next, next != ""
}
