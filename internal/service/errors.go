// Package service implements the business logic: every state-changing operation
// authorizes the caller, performs one atomic repository mutation, and on
// success broadcasts the resulting domain event to the owning list topic.
package service

import "errors"

var (
	// ErrInvalidInput marks a request missing a required field or carrying a
	// malformed value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrForbidden marks a caller that is not a member of the target list.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound marks a referenced list or todo that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoTransition marks a transition request with no defined next state.
	ErrNoTransition = errors.New("no valid transition")
	// ErrUserExists marks a registration with an already-taken username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials marks an authorize attempt for an unknown user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
