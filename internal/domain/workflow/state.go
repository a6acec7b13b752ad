package workflow

// State represents a session state in the notarization lifecycle
type State string

const (
	StatePendingCertifier     State = "pending_certifier"
	StateActiveCall           State = "active_call"
	StateClientApproval       State = "client_approval"
	StatePendingClientPackage State = "pending_client_package"
	StatePendingFEASignature  State = "pending_fea_signature"
	StateCompleted            State = "completed"
	StateFailed               State = "failed"
)

var validStates = map[State]bool{
	StatePendingCertifier:     true,
	StateActiveCall:           true,
	StateClientApproval:       true,
	StatePendingClientPackage: true,
	StatePendingFEASignature:  true,
	StateCompleted:            true,
	StateFailed:               true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
	StateFailed:    true,
}

// IsTerminal returns true if the state is a terminal state (no further transitions allowed)
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid session state
func (s State) IsValid() bool {
	return validStates[s]
}
