package contest

import (
	"context"
	"fmt"

	"refcontest/entity"
)

const DefaultLeaderboardSize = 5

type Leaderboard struct {
	store RankingStore
}

func NewLeaderboard(store RankingStore) *Leaderboard {
	return &Leaderboard{store: store}
}

// Top returns up to n participants ordered by referral count, earliest joiners first on ties.
// n <= 0 means the default size. No participants is an empty slice, not an error.
func (l *Leaderboard) Top(ctx context.Context, n int) ([]entity.LeaderboardRow, error) {
	if n <= 0 {
		n = DefaultLeaderboardSize
	}
	participants, err := l.store.TopParticipants(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: top participants: %w", ErrStorage, err)
	}
	rows := make([]entity.LeaderboardRow, 0, len(participants))
	for i, p := range participants {
		rows = append(rows, entity.LeaderboardRow{
			Rank:          i + 1,
			UserID:        p.UserID,
			DisplayName:   p.DisplayName,
			Handle:        p.Handle,
			ReferralCount: p.ReferralCount,
			JoinedAt:      p.JoinedAt,
		})
	}
	return rows, nil
}

// Rank is the 1-based position of userID under the Top ordering, 0 when not registered.
func (l *Leaderboard) Rank(ctx context.Context, userID int64) (int, error) {
	rank, err := l.store.RankOf(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: rank: %w", ErrStorage, err)
	}
	return rank, nil
}

func (l *Leaderboard) Count(ctx context.Context) (int, error) {
	n, err := l.store.CountParticipants(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count participants: %w", ErrStorage, err)
	}
	return n, nil
}
