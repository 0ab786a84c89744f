package entity

import "time"

// LeaderboardRow is one ranked line of the leaderboard, rank is 1-based.
type LeaderboardRow struct {
	Rank          int       `json:"rank"`
	UserID        int64     `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	Handle        string    `json:"handle,omitempty"`
	ReferralCount int       `json:"referral_count"`
	JoinedAt      time.Time `json:"joined_at"`
}

func (r *LeaderboardRow) Name() string {
	return DisplayName(r.UserID, r.DisplayName, r.Handle)
}
