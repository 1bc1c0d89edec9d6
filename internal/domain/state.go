package domain

// FinalizationState is the user-visible state of one checkout finalization.
//
// Lifecycle: a session starts Idle when it is created with a valid checkout
// context. Transitions are driven only by the finalizer:
//
//	Idle -> Processing    payment simulator reported success
//	Processing -> Succeeded  persistence sequence completed, or deadline forced
//	Processing -> Failed  draft/payment error before persistence began
//	Failed -> Idle        user retry
//
// Succeeded and Failed are terminal; no automatic transition leaves them.
type FinalizationState string

const (
	StateIdle       FinalizationState = "idle"
	StateProcessing FinalizationState = "processing"
	StateSucceeded  FinalizationState = "succeeded"
	StateFailed     FinalizationState = "failed"
)

// IsTerminal reports whether the state permits no further automatic transition.
func (s FinalizationState) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}
