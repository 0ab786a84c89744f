package entity

import "time"

// Event types published to the contest event stream.
const (
	EventParticipantRegistered = "participant_registered"
	EventReferralAttributed    = "referral_attributed"
	EventContestEnded          = "contest_ended"
)

type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id,omitempty"`
	ReferrerID int64     `json:"referrer_id,omitempty"`
	Count      int       `json:"count,omitempty"`
	At         time.Time `json:"at"`
}
