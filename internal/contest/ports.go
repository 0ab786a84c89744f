package contest

//go:generate mockgen -destination=mocks/mocks.go -package=mocks refcontest/internal/contest SubscriptionChecker,MemberCounter,Notifier,EventPublisher

import (
	"context"
	"time"

	"refcontest/entity"
)

// ParticipantStore owns the participants relation.
// GetParticipant returns nil, nil when the user is not registered.
type ParticipantStore interface {
	UpsertParticipant(ctx context.Context, p *entity.Participant) (created bool, err error)
	GetParticipant(ctx context.Context, userID int64) (*entity.Participant, error)
	IncrementReferrals(ctx context.Context, userID int64) (int, error)
}

// ReferralLedger owns the referral edges relation: one edge per referred user, ever.
// ReferrerOf returns 0 when the user was not referred.
type ReferralLedger interface {
	AttributeReferral(ctx context.Context, edge *entity.ReferralEdge) (created bool, err error)
	ReferrerOf(ctx context.Context, referredID int64) (int64, error)
}

// Tx is the view of the store inside one atomic unit of work.
type Tx interface {
	ParticipantStore
	ReferralLedger
}

// RankingStore serves the read-only leaderboard.
// Ordering is referral_count desc, then insertion order.
type RankingStore interface {
	TopParticipants(ctx context.Context, n int) ([]*entity.Participant, error)
	// RankOf returns the 1-based position of the user, or 0 if not registered.
	RankOf(ctx context.Context, userID int64) (int, error)
	CountParticipants(ctx context.Context) (int, error)
}

// StateStore owns the single contest state row.
type StateStore interface {
	LoadState(ctx context.Context) (*entity.ContestState, error)
	// CompareAndEnd switches the state from active to ended and reports whether this call did it.
	CompareAndEnd(ctx context.Context, at time.Time) (bool, error)
}

// Store is the authoritative persistent store.
// Atomically runs fn in a transaction: every write made through tx is applied or none is.
type Store interface {
	ParticipantStore
	ReferralLedger
	RankingStore
	StateStore
	Atomically(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// SubscriptionChecker reports channel membership; implementations return false on any failure.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64) bool
}

type MemberCounter interface {
	CurrentMemberCount(ctx context.Context) (int, error)
}

// Notifier delivers messages in the background with bounded retries.
type Notifier interface {
	Go(recipient int64, msg string)
	GoAdmin(msg string)
}

// AdminNotices receives low-priority admin notices; a digest buffer or the notifier itself.
type AdminNotices interface {
	GoAdmin(msg string)
}

// EventPublisher sends contest events to the event stream without blocking.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.Event)
}
