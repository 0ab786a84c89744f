// Package entity defines domain types shared across the application.
package entity

import (
	"fmt"
	"time"
)

// Participant is a registered contest entrant.
// UserID is the Telegram user id; ReferralCount is changed only by the referral tracker.
type Participant struct {
	UserID        int64     `json:"user_id" bson:"_id"`
	DisplayName   string    `json:"display_name" bson:"display_name"`
	Handle        string    `json:"handle,omitempty" bson:"handle"`
	ReferralCount int       `json:"referral_count" bson:"referral_count"`
	JoinedAt      time.Time `json:"joined_at" bson:"joined_at"`
	// Seq is the store-assigned insertion order, strictly increasing.
	Seq int64 `json:"-" bson:"seq"`
}

// Name returns the name shown in leaderboards: @handle when known, display name otherwise.
func (p *Participant) Name() string {
	return DisplayName(p.UserID, p.DisplayName, p.Handle)
}

func DisplayName(userID int64, displayName, handle string) string {
	if handle != "" {
		return "@" + handle
	}
	if displayName != "" {
		return displayName
	}
	return fmt.Sprintf("%d", userID)
}

// ParticipantStats is the personal view returned for the "my stats" request.
type ParticipantStats struct {
	Participant *Participant `json:"participant"`
	Rank        int          `json:"rank"`
	Remaining   int          `json:"remaining"`
	Code        string       `json:"code"`
}
