package entity

import "time"

type ContestStatus string

const (
	StatusActive ContestStatus = "active"
	StatusEnded  ContestStatus = "ended" // terminal
)

// ContestState is the single durable contest record.
type ContestState struct {
	Status  ContestStatus `json:"status" bson:"status"`
	EndedAt *time.Time    `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
}

func (s ContestState) IsEnded() bool {
	return s.Status == StatusEnded
}

// ContestSummary is the reporting view of the contest.
type ContestSummary struct {
	Status       ContestStatus `json:"status"`
	EndedAt      *time.Time    `json:"ended_at,omitempty"`
	MemberCount  int           `json:"member_count"`
	Cap          int           `json:"cap"`
	Remaining    int           `json:"remaining"`
	Participants int           `json:"participants"`
}
