package entity

// Status constants for Session
const (
	StatusPendingCertifier     = "pending_certifier"
	StatusActiveCall           = "active_call"
	StatusClientApproval       = "client_approval"
	StatusPendingClientPackage = "pending_client_package"
	StatusPendingFEASignature  = "pending_fea_signature"
	StatusCompleted            = "completed"
	StatusFailed               = "failed"
)

// Status constants for Transaction
const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Service type constants. REN is the assisted-in-person variant, RON the
// fully-remote one; the distinction affects presentation only, not the
// transition graph.
const (
	ServiceTypeREN = "ren"
	ServiceTypeRON = "ron"
)

// Actor constants recorded in session history
const (
	ActorClient    = "client"
	ActorCertifier = "certifier"
	ActorSystem    = "system"
)

// ValidServiceType reports whether t is a known service type.
func ValidServiceType(t string) bool {
	return t == ServiceTypeREN || t == ServiceTypeRON
}
