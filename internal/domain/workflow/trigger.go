package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	TriggerAccept          Trigger = "ACCEPT"
	TriggerSendDocument    Trigger = "SEND_DOCUMENT"
	TriggerApproveDocument Trigger = "APPROVE_DOCUMENT"
	TriggerSubmitPackage   Trigger = "SUBMIT_PACKAGE"
	TriggerFinalize        Trigger = "FINALIZE"
	TriggerFail            Trigger = "FAIL"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
