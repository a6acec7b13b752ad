package workflow

// StateMachine tracks the current state of a session and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Peek returns the state the trigger would lead to without firing it
	Peek(trigger Trigger) (State, bool)

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(trigger Trigger) error

	// PermittedTriggers returns all triggers that can be fired in the current state
	PermittedTriggers() []Trigger
}
