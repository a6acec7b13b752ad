package workflow

import "fmt"

// StateMachineBuilder builds a configured state machine
type StateMachineBuilder interface {
	// Configure returns a state configuration for the given state
	Configure(state State) StateConfiguration

	// Build creates a new state machine instance with the given initial state
	Build(initialState State) StateMachine
}

// StateConfiguration configures transitions for a specific state
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state
	Permit(trigger Trigger, toState State) StateConfiguration
}

// stateConfig implements StateConfiguration
type stateConfig struct {
	fromState   State
	transitions map[Trigger]State
}

// stateMachineBuilder implements StateMachineBuilder
type stateMachineBuilder struct {
	configurations map[State]*stateConfig
}

// stateMachine implements StateMachine
type stateMachine struct {
	currentState   State
	configurations map[State]*stateConfig
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[State]*stateConfig),
	}
}

// Configure returns a state configuration for the given state
func (b *stateMachineBuilder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{
			fromState:   state,
			transitions: make(map[Trigger]State),
		}
		b.configurations[state] = config
	}

	return config
}

// Build creates a new state machine instance with the given initial state.
// Configurations are copied so machines built from the same builder do not
// share mutable state.
func (b *stateMachineBuilder) Build(initialState State) StateMachine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	configsCopy := make(map[State]*stateConfig, len(b.configurations))
	for state, config := range b.configurations {
		transitionsCopy := make(map[Trigger]State, len(config.transitions))
		for trigger, to := range config.transitions {
			transitionsCopy[trigger] = to
		}
		configsCopy[state] = &stateConfig{
			fromState:   state,
			transitions: transitionsCopy,
		}
	}

	return &stateMachine{
		currentState:   initialState,
		configurations: configsCopy,
	}
}

// Permit allows a trigger to transition to the target state
func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}

	c.transitions[trigger] = toState
	return c
}

// State returns the current state
func (m *stateMachine) State() State {
	return m.currentState
}

// CanFire returns true if the trigger is permitted in the current state
func (m *stateMachine) CanFire(trigger Trigger) bool {
	_, ok := m.Peek(trigger)
	return ok
}

// Peek returns the state the trigger would lead to without firing it
func (m *stateMachine) Peek(trigger Trigger) (State, bool) {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return "", false
	}

	to, exists := config.transitions[trigger]
	return to, exists
}

// Fire attempts to execute the trigger, transitioning to the new state if allowed
func (m *stateMachine) Fire(trigger Trigger) error {
	to, ok := m.Peek(trigger)
	if !ok {
		return fmt.Errorf("%w: cannot fire trigger %s from state %s", ErrInvalidTransition, trigger, m.currentState)
	}

	m.currentState = to
	return nil
}

// PermittedTriggers returns all triggers that can be fired in the current state
func (m *stateMachine) PermittedTriggers() []Trigger {
	config, exists := m.configurations[m.currentState]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}

	return triggers
}
