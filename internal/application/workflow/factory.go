package workflow

import (
	domainwf "github.com/fcastillo/hybrid-notary/internal/domain/workflow"
)

// BuildSessionStateMachine creates a state machine configured for the
// notarization session lifecycle, positioned at the given state. The happy
// path is strictly linear; FAIL is reserved for explicit failure handling and
// the abandonment sweeper.
func BuildSessionStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatePendingCertifier).
		Permit(domainwf.TriggerAccept, domainwf.StateActiveCall).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateActiveCall).
		Permit(domainwf.TriggerSendDocument, domainwf.StateClientApproval).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StateClientApproval).
		Permit(domainwf.TriggerApproveDocument, domainwf.StatePendingClientPackage).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StatePendingClientPackage).
		Permit(domainwf.TriggerSubmitPackage, domainwf.StatePendingFEASignature).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	builder.Configure(domainwf.StatePendingFEASignature).
		Permit(domainwf.TriggerFinalize, domainwf.StateCompleted).
		Permit(domainwf.TriggerFail, domainwf.StateFailed)

	// COMPLETED and FAILED are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
