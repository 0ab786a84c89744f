package entity

// OutcomeKind tells the transport which message to present after a registration attempt.
type OutcomeKind int

const (
	OutcomeWelcomed OutcomeKind = iota
	OutcomeNeedsSubscription
	OutcomeContestEnded
	OutcomeStorageError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeWelcomed:
		return "welcomed"
	case OutcomeNeedsSubscription:
		return "needs_subscription"
	case OutcomeContestEnded:
		return "contest_ended"
	case OutcomeStorageError:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Outcome is the result of a registration or subscription re-check.
// Code is the user's own referral payload; Remaining is the number of free slots last observed.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Code      string      `json:"code,omitempty"`
	Remaining int         `json:"remaining"`
	Cap       int         `json:"cap"`
}
