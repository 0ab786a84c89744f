package core

import (
	"context"
	"fmt"
	"log/slog"

	"refcontest/entity"
	"refcontest/internal/contest"
	"refcontest/lib/sl"
)

type AuthService interface {
	UserByToken(token string) (*entity.User, error)
}

// Core is the single entry point used by the bot and the reporting API.
type Core struct {
	tracker     *contest.Tracker
	leaderboard *contest.Leaderboard
	monitor     *contest.Monitor
	state       *contest.State
	auth        AuthService
	log         *slog.Logger
}

func New(
	tracker *contest.Tracker,
	leaderboard *contest.Leaderboard,
	monitor *contest.Monitor,
	state *contest.State,
	log *slog.Logger,
) *Core {
	if tracker == nil || leaderboard == nil || monitor == nil || state == nil {
		panic("contest components are nil")
	}
	return &Core{
		tracker:     tracker,
		leaderboard: leaderboard,
		monitor:     monitor,
		state:       state,
		log:         log.With(sl.Module("core")),
	}
}

func (c *Core) SetAuthService(auth AuthService) {
	c.auth = auth
}

func (c *Core) AuthenticateByToken(token string) (*entity.User, error) {
	if c.auth == nil {
		return nil, fmt.Errorf("auth service not connected")
	}
	return c.auth.UserByToken(token)
}

func (c *Core) Register(ctx context.Context, req contest.RegisterRequest) entity.Outcome {
	return c.tracker.Register(ctx, req)
}

func (c *Core) Recheck(ctx context.Context, userID int64) entity.Outcome {
	return c.tracker.Recheck(ctx, userID)
}

func (c *Core) Stats(ctx context.Context, userID int64) (entity.ParticipantStats, error) {
	return c.tracker.Stats(ctx, userID)
}

func (c *Core) Top(ctx context.Context, n int) ([]entity.LeaderboardRow, error) {
	return c.leaderboard.Top(ctx, n)
}

func (c *Core) IsEnded() bool {
	return c.state.IsEnded()
}

// CheckCap runs an inline cap check with the configured cap.
func (c *Core) CheckCap(ctx context.Context) (bool, int, error) {
	return c.monitor.CheckAndMaybeEnd(ctx, c.monitor.Cap())
}

func (c *Core) Summary(ctx context.Context) (*entity.ContestSummary, error) {
	participants, err := c.leaderboard.Count(ctx)
	if err != nil {
		return nil, err
	}
	limit := c.monitor.Cap()
	summary := &entity.ContestSummary{
		Status:       entity.StatusActive,
		MemberCount:  c.monitor.LastCount(),
		Cap:          limit,
		Remaining:    c.monitor.Remaining(limit),
		Participants: participants,
	}
	if c.state.IsEnded() {
		summary.Status = entity.StatusEnded
		if at, ok := c.state.EndedAt(); ok {
			summary.EndedAt = &at
		}
	}
	return summary, nil
}
