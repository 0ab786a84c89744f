package core

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"refcontest/entity"
	"refcontest/impl/auth"
	"refcontest/internal/contest"
	"refcontest/internal/contest/mocks"
	"refcontest/internal/database"
)

func newCore(t *testing.T, limit int) (*Core, *mocks.MockMemberCounter, *mocks.MockNotifier) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	store, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "core.db"), log)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	counter := mocks.NewMockMemberCounter(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	subs := mocks.NewMockSubscriptionChecker(ctrl)
	subs.EXPECT().IsSubscribed(gomock.Any(), gomock.Any()).Return(true).AnyTimes()
	events := mocks.NewMockEventPublisher(ctrl)
	events.EXPECT().Publish(gomock.Any(), gomock.Any()).AnyTimes()

	state := contest.NewState(store, nil, log)
	require.NoError(t, state.Load(ctx))
	monitor := contest.NewMonitor(contest.MonitorConfig{Cap: limit}, state, counter, notifier, events, nil, nil, log)
	tracker := contest.NewTracker(contest.TrackerConfig{Cap: limit}, store, monitor, subs, notifier, nil, events, nil, nil, log)

	return New(tracker, contest.NewLeaderboard(store), monitor, state, log), counter, notifier
}

func TestNew_PanicsOnMissingComponents(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Panics(t, func() { New(nil, nil, nil, nil, log) })
}

func TestAuthenticateByToken(t *testing.T) {
	c, _, _ := newCore(t, 10)

	_, err := c.AuthenticateByToken("token")
	assert.Error(t, err)

	c.SetAuthService(auth.New("token"))
	user, err := c.AuthenticateByToken("token")
	require.NoError(t, err)
	assert.Equal(t, "api", user.Username)
}

func TestSummary(t *testing.T) {
	c, counter, notifier := newCore(t, 3)
	ctx := context.Background()

	counter.EXPECT().CurrentMemberCount(gomock.Any()).Return(1, nil).Times(2)
	counter.EXPECT().CurrentMemberCount(gomock.Any()).Return(3, nil).AnyTimes()
	notifier.EXPECT().GoAdmin(gomock.Any()).Times(1)

	out := c.Register(ctx, contest.RegisterRequest{UserID: 1, DisplayName: "A"})
	require.Equal(t, entity.OutcomeWelcomed, out.Kind)

	ended, count, err := c.CheckCap(ctx)
	require.NoError(t, err)
	assert.False(t, ended)
	assert.Equal(t, 1, count)

	summary, err := c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusActive, summary.Status)
	assert.Nil(t, summary.EndedAt)
	assert.Equal(t, 1, summary.MemberCount)
	assert.Equal(t, 3, summary.Cap)
	assert.Equal(t, 2, summary.Remaining)
	assert.Equal(t, 1, summary.Participants)

	ended, _, err = c.CheckCap(ctx)
	require.NoError(t, err)
	assert.True(t, ended)
	assert.True(t, c.IsEnded())

	summary, err = c.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusEnded, summary.Status)
	assert.NotNil(t, summary.EndedAt)
	assert.Equal(t, 0, summary.Remaining)

	out = c.Register(ctx, contest.RegisterRequest{UserID: 2, DisplayName: "B"})
	assert.Equal(t, entity.OutcomeContestEnded, out.Kind)

	rows, err := c.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].UserID)
}
