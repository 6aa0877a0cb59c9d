package session

import "errors"

var (
	// ErrInvalidTransition indicates a state transition the lifecycle doesn't allow.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrCorruptState indicates a persisted session with an illegal field combination.
	ErrCorruptState = errors.New("corrupt session state")
)
