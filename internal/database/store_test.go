package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"refcontest/entity"
	"refcontest/internal/contest"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// StoreSuite runs against any Store; open must return a fresh, empty store.
type StoreSuite struct {
	suite.Suite
	open  func(t *testing.T) Store
	store Store
	ctx   context.Context
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.open(s.T())
}

func (s *StoreSuite) TearDownTest() {
	s.store.Close()
}

func (s *StoreSuite) register(id int64, name string, joined time.Time) {
	created, err := s.store.UpsertParticipant(s.ctx, &entity.Participant{
		UserID:      id,
		DisplayName: name,
		JoinedAt:    joined,
	})
	s.Require().NoError(err)
	s.Require().True(created)
}

func (s *StoreSuite) refer(referrer, referred int64) {
	err := s.store.Atomically(s.ctx, func(ctx context.Context, tx contest.Tx) error {
		ok, err := tx.AttributeReferral(ctx, &entity.ReferralEdge{
			ReferredUserID: referred,
			ReferrerUserID: referrer,
			CreatedAt:      t0,
		})
		if err != nil || !ok {
			return err
		}
		_, err = tx.IncrementReferrals(ctx, referrer)
		return err
	})
	s.Require().NoError(err)
}

func (s *StoreSuite) TestUpsertParticipantIsIdempotent() {
	p := &entity.Participant{UserID: 10, DisplayName: "Ann", Handle: "ann", JoinedAt: t0}

	created, err := s.store.UpsertParticipant(s.ctx, p)
	s.Require().NoError(err)
	s.True(created)

	again := &entity.Participant{UserID: 10, DisplayName: "Other", JoinedAt: t0.Add(time.Hour)}
	created, err = s.store.UpsertParticipant(s.ctx, again)
	s.Require().NoError(err)
	s.False(created)

	got, err := s.store.GetParticipant(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("Ann", got.DisplayName)
	s.Equal("ann", got.Handle)
	s.Equal(0, got.ReferralCount)
	s.True(t0.Equal(got.JoinedAt))

	n, err := s.store.CountParticipants(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *StoreSuite) TestGetParticipantMissing() {
	got, err := s.store.GetParticipant(s.ctx, 404)
	s.NoError(err)
	s.Nil(got)
}

func (s *StoreSuite) TestAttributeReferralOncePerReferredUser() {
	s.register(1, "A", t0)
	s.register(2, "B", t0.Add(time.Second))
	s.register(3, "C", t0.Add(2*time.Second))

	s.refer(1, 3)
	s.refer(2, 3)

	referrer, err := s.store.ReferrerOf(s.ctx, 3)
	s.Require().NoError(err)
	s.Equal(int64(1), referrer)

	a, err := s.store.GetParticipant(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(1, a.ReferralCount)

	b, err := s.store.GetParticipant(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(0, b.ReferralCount)
}

func (s *StoreSuite) TestSelfReferralRejected() {
	s.register(1, "A", t0)
	ok, err := s.store.AttributeReferral(s.ctx, &entity.ReferralEdge{ReferredUserID: 1, ReferrerUserID: 1, CreatedAt: t0})
	s.Require().NoError(err)
	s.False(ok)

	referrer, err := s.store.ReferrerOf(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(referrer)
}

func (s *StoreSuite) TestAtomicallyRollsBack() {
	s.register(1, "A", t0)
	s.register(2, "B", t0)

	boom := errors.New("boom")
	err := s.store.Atomically(s.ctx, func(ctx context.Context, tx contest.Tx) error {
		if _, err := tx.AttributeReferral(ctx, &entity.ReferralEdge{ReferredUserID: 2, ReferrerUserID: 1, CreatedAt: t0}); err != nil {
			return err
		}
		if _, err := tx.IncrementReferrals(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	referrer, err := s.store.ReferrerOf(s.ctx, 2)
	s.Require().NoError(err)
	s.Zero(referrer)
	a, err := s.store.GetParticipant(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(0, a.ReferralCount)
}

func (s *StoreSuite) TestIncrementUnknownParticipant() {
	_, err := s.store.IncrementReferrals(s.ctx, 99)
	s.Error(err)
}

func (s *StoreSuite) TestLeaderboardOrdering() {
	// A=5 joined first, B=3, C=5 joined after A, D=1
	s.register(1, "A", t0)
	s.register(2, "B", t0.Add(time.Minute))
	s.register(3, "C", t0.Add(2*time.Minute))
	s.register(4, "D", t0.Add(3*time.Minute))
	next := int64(100)
	for id, count := range map[int64]int{1: 5, 2: 3, 3: 5, 4: 1} {
		for i := 0; i < count; i++ {
			s.register(next, "", t0.Add(time.Hour))
			s.refer(id, next)
			next++
		}
	}

	top, err := s.store.TopParticipants(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal([]int64{1, 3, 2}, []int64{top[0].UserID, top[1].UserID, top[2].UserID})
	s.Equal([]int{5, 5, 3}, []int{top[0].ReferralCount, top[1].ReferralCount, top[2].ReferralCount})

	for id, want := range map[int64]int{1: 1, 3: 2, 2: 3, 4: 4} {
		rank, err := s.store.RankOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want, rank, "rank of %d", id)
	}
	rank, err := s.store.RankOf(s.ctx, 12345)
	s.Require().NoError(err)
	s.Zero(rank)
}

func (s *StoreSuite) TestLeaderboardTieBreakByInsertionOrder() {
	// same timestamp, inserted in descending id order
	s.register(30, "first", t0)
	s.register(10, "second", t0)
	s.register(20, "third", t0)

	top, err := s.store.TopParticipants(s.ctx, 5)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal([]int64{30, 10, 20}, []int64{top[0].UserID, top[1].UserID, top[2].UserID})
	s.Less(top[0].Seq, top[1].Seq)
	s.Less(top[1].Seq, top[2].Seq)

	for id, want := range map[int64]int{30: 1, 10: 2, 20: 3} {
		rank, err := s.store.RankOf(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(want, rank, "rank of %d", id)
	}

	// a referral moves the last inserted participant ahead of the tie
	s.register(40, "", t0)
	s.refer(20, 40)
	rank, err := s.store.RankOf(s.ctx, 20)
	s.Require().NoError(err)
	s.Equal(1, rank)
	rank, err = s.store.RankOf(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(3, rank)
}

func (s *StoreSuite) TestRepeatedUpsertKeepsSeq() {
	s.register(1, "A", t0)
	before, err := s.store.GetParticipant(s.ctx, 1)
	s.Require().NoError(err)

	created, err := s.store.UpsertParticipant(s.ctx, &entity.Participant{UserID: 1, JoinedAt: t0.Add(time.Hour)})
	s.Require().NoError(err)
	s.False(created)
	s.register(2, "B", t0)

	after, err := s.store.GetParticipant(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(before.Seq, after.Seq)

	top, err := s.store.TopParticipants(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal(int64(1), top[0].UserID)
}

func (s *StoreSuite) TestTopEmpty() {
	top, err := s.store.TopParticipants(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *StoreSuite) TestCompareAndEndOnce() {
	state, err := s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.Equal(entity.StatusActive, state.Status)
	s.Nil(state.EndedAt)

	did, err := s.store.CompareAndEnd(s.ctx, t0)
	s.Require().NoError(err)
	s.True(did)

	did, err = s.store.CompareAndEnd(s.ctx, t0.Add(time.Hour))
	s.Require().NoError(err)
	s.False(did)

	state, err = s.store.LoadState(s.ctx)
	s.Require().NoError(err)
	s.True(state.IsEnded())
	s.Require().NotNil(state.EndedAt)
	s.True(t0.Equal(*state.EndedAt))
}

func (s *StoreSuite) TestConcurrentCompareAndEnd() {
	const n = 16
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			did, err := s.store.CompareAndEnd(s.ctx, t0)
			if err == nil {
				results <- did
			}
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for did := range results {
		if did {
			wins++
		}
	}
	s.Equal(1, wins)
}

func (s *StoreSuite) TestConcurrentAttributionSingleEdge() {
	const referrers = 8
	for i := int64(1); i <= referrers; i++ {
		s.register(i, "", t0)
	}
	s.register(100, "target", t0)

	var wg sync.WaitGroup
	for i := int64(1); i <= referrers; i++ {
		wg.Add(1)
		go func(referrer int64) {
			defer wg.Done()
			_ = s.store.Atomically(s.ctx, func(ctx context.Context, tx contest.Tx) error {
				ok, err := tx.AttributeReferral(ctx, &entity.ReferralEdge{ReferredUserID: 100, ReferrerUserID: referrer, CreatedAt: t0})
				if err != nil || !ok {
					return err
				}
				_, err = tx.IncrementReferrals(ctx, referrer)
				return err
			})
		}(i)
	}
	wg.Wait()

	total := 0
	for i := int64(1); i <= referrers; i++ {
		p, err := s.store.GetParticipant(s.ctx, i)
		s.Require().NoError(err)
		total += p.ReferralCount
	}
	s.Equal(1, total)

	referrer, err := s.store.ReferrerOf(s.ctx, 100)
	s.Require().NoError(err)
	s.NotZero(referrer)
}

func openTestSQLite(t *testing.T) Store {
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"), discardLogger())
	require.NoError(t, err)
	return store
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreSuite{open: openTestSQLite})
}

func TestSQLiteReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "reopen.db")

	store, err := OpenSQLite(ctx, path, discardLogger())
	require.NoError(t, err)
	did, err := store.CompareAndEnd(ctx, t0)
	require.NoError(t, err)
	require.True(t, did)
	store.Close()

	store, err = OpenSQLite(ctx, path, discardLogger())
	require.NoError(t, err)
	defer store.Close()

	state, err := store.LoadState(ctx)
	require.NoError(t, err)
	require.True(t, state.IsEnded())
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("\nCREATE TABLE a (id INT);\n\n  INSERT INTO a VALUES (1);\n")
	require.Equal(t, []string{"CREATE TABLE a (id INT)", "INSERT INTO a VALUES (1)"}, got)
	require.Empty(t, splitStatements(" ;\n; "))
}

func TestExtractUp(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id INT);\n-- +migrate Down\nDROP TABLE a;\n"
	require.Equal(t, "\nCREATE TABLE a (id INT);\n", extractUp(content))
	require.Equal(t, "SELECT 1", extractUp("SELECT 1"))
}
