package contest

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"refcontest/lib/clock"
	"refcontest/lib/sl"
)

// State is the contest status: a durable single row plus an in-process cache.
// The cache only ever moves from active to ended, the same direction as the durable row,
// so a stale read can only say "active" for at most one refresh interval.
type State struct {
	store   StateStore
	clock   clock.Clock
	log     *slog.Logger
	ended   atomic.Bool
	endedAt atomic.Pointer[time.Time]
}

func NewState(store StateStore, clk clock.Clock, log *slog.Logger) *State {
	if clk == nil {
		clk = clock.Real
	}
	return &State{
		store: store,
		clock: clk,
		log:   log.With(sl.Module("contest.state")),
	}
}

// Load reads the durable state into the cache.
func (s *State) Load(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh re-reads the durable row; called by the monitor on every tick.
func (s *State) Refresh(ctx context.Context) error {
	if s.ended.Load() {
		return nil
	}
	st, err := s.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("%w: load state: %w", ErrStorage, err)
	}
	if st.IsEnded() {
		s.markEnded(st.EndedAt)
	}
	return nil
}

func (s *State) IsEnded() bool {
	return s.ended.Load()
}

func (s *State) EndedAt() (time.Time, bool) {
	at := s.endedAt.Load()
	if at == nil {
		return time.Time{}, false
	}
	return *at, true
}

// TryEnd performs the active -> ended transition as a durable compare-and-swap.
// It returns true for exactly one caller; every other caller, concurrent or later, gets false.
func (s *State) TryEnd(ctx context.Context) (bool, error) {
	if s.ended.Load() {
		return false, nil
	}
	now := s.clock()
	did, err := s.store.CompareAndEnd(ctx, now)
	if err != nil {
		return false, fmt.Errorf("%w: end contest: %w", ErrStorage, err)
	}
	if did {
		s.markEnded(&now)
		s.log.Info("contest ended", slog.Time("ended_at", now))
		return true, nil
	}
	// lost the race: someone else ended it, pick up their timestamp
	if err = s.Refresh(ctx); err != nil {
		s.log.Warn("refresh after lost end race", sl.Err(err))
		s.markEnded(nil)
	}
	return false, nil
}

func (s *State) markEnded(at *time.Time) {
	if at != nil {
		t := *at
		s.endedAt.CompareAndSwap(nil, &t)
	}
	s.ended.Store(true)
}
