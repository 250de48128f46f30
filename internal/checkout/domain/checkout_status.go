package domain

// CheckoutStatus tracks how far the purchase saga has progressed. Each step
// persists its status before moving on, so a crash leaves a resumable row
// instead of a silent orphan.
type CheckoutStatus string

const (
	CheckoutStatusInitiated     CheckoutStatus = "INITIATED"
	CheckoutStatusStockReserved CheckoutStatus = "STOCK_RESERVED"
	CheckoutStatusOrderCreated  CheckoutStatus = "ORDER_CREATED"
	CheckoutStatusProofAttached CheckoutStatus = "PROOF_ATTACHED"
	CheckoutStatusCompleted     CheckoutStatus = "COMPLETED"
	CheckoutStatusFailed        CheckoutStatus = "FAILED"
)

var transitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusInitiated:     {CheckoutStatusStockReserved, CheckoutStatusFailed},
	CheckoutStatusStockReserved: {CheckoutStatusOrderCreated, CheckoutStatusFailed},
	CheckoutStatusOrderCreated:  {CheckoutStatusProofAttached, CheckoutStatusFailed},
	CheckoutStatusProofAttached: {CheckoutStatusCompleted},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
