package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a trigger is not permitted in
	// the session's current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a state is not valid
	ErrInvalidState = errors.New("invalid state")
)
