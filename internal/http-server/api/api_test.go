package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refcontest/entity"
	"refcontest/internal/config"
	"refcontest/internal/metrics"
)

const token = "secret-token"

type fakeCore struct {
	rows      []entity.LeaderboardRow
	lastLimit int
	summary   *entity.ContestSummary
	stats     map[int64]entity.ParticipantStats
	fail      bool
}

func (f *fakeCore) AuthenticateByToken(t string) (*entity.User, error) {
	if t != token {
		return nil, errors.New("invalid token")
	}
	return &entity.User{Username: "api"}, nil
}

func (f *fakeCore) Top(_ context.Context, n int) ([]entity.LeaderboardRow, error) {
	f.lastLimit = n
	if f.fail {
		return nil, errors.New("db down")
	}
	if n < len(f.rows) {
		return f.rows[:n], nil
	}
	return f.rows, nil
}

func (f *fakeCore) Summary(context.Context) (*entity.ContestSummary, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	return f.summary, nil
}

func (f *fakeCore) Stats(_ context.Context, userID int64) (entity.ParticipantStats, error) {
	return f.stats[userID], nil
}

type envelope struct {
	Data          json.RawMessage `json:"data"`
	Count         int             `json:"count"`
	Success       bool            `json:"success"`
	StatusMessage string          `json:"status_message"`
}

func newTestServer(t *testing.T, core *fakeCore) *httptest.Server {
	t.Helper()
	conf := &config.Config{Contest: config.ContestConfig{LeaderboardSize: 5}}
	reg := prometheus.NewRegistry()
	metrics.New(reg).Registration("welcomed")
	srv := httptest.NewServer(NewRouter(conf, slog.New(slog.NewTextHandler(io.Discard, nil)), core, reg))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string, auth bool) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(body, &env))
	}
	return resp.StatusCode, env
}

func sampleCore() *fakeCore {
	return &fakeCore{
		rows: []entity.LeaderboardRow{
			{Rank: 1, UserID: 1, DisplayName: "A", ReferralCount: 5},
			{Rank: 2, UserID: 3, DisplayName: "C", ReferralCount: 5},
			{Rank: 3, UserID: 2, DisplayName: "B", ReferralCount: 3},
		},
		summary: &entity.ContestSummary{Status: entity.StatusActive, Cap: 100, MemberCount: 40, Remaining: 60, Participants: 12},
		stats: map[int64]entity.ParticipantStats{
			1: {Participant: &entity.Participant{UserID: 1, ReferralCount: 5}, Rank: 1, Code: "ref1"},
		},
	}
}

func TestLeaderboard(t *testing.T) {
	core := sampleCore()
	srv := newTestServer(t, core)

	status, _ := get(t, srv, "/v1/leaderboard", false)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env := get(t, srv, "/v1/leaderboard", true)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.Equal(t, 3, env.Count)
	assert.Equal(t, 5, core.lastLimit)

	var rows []entity.LeaderboardRow
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Equal(t, int64(3), rows[1].UserID)

	status, env = get(t, srv, "/v1/leaderboard?limit=2", true)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, env.Count)
}

func TestLeaderboard_BadLimit(t *testing.T) {
	srv := newTestServer(t, sampleCore())

	for _, q := range []string{"0", "101", "-3", "ten"} {
		status, env := get(t, srv, "/v1/leaderboard?limit="+q, true)
		assert.Equal(t, http.StatusBadRequest, status, q)
		assert.False(t, env.Success, q)
	}
}

func TestLeaderboard_StoreFailure(t *testing.T) {
	core := sampleCore()
	core.fail = true
	srv := newTestServer(t, core)

	status, env := get(t, srv, "/v1/leaderboard", true)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)

	status, _ = get(t, srv, "/health", false)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestContestStatus(t *testing.T) {
	srv := newTestServer(t, sampleCore())

	status, env := get(t, srv, "/v1/contest", true)
	require.Equal(t, http.StatusOK, status)

	var summary entity.ContestSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, entity.StatusActive, summary.Status)
	assert.Equal(t, 60, summary.Remaining)
}

func TestParticipantStats(t *testing.T) {
	srv := newTestServer(t, sampleCore())

	status, env := get(t, srv, "/v1/participants/1", true)
	require.Equal(t, http.StatusOK, status)
	var stats entity.ParticipantStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.Rank)
	assert.Equal(t, "ref1", stats.Code)

	status, _ = get(t, srv, "/v1/participants/2", true)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = get(t, srv, "/v1/participants/abc", true)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t, sampleCore())

	status, env := get(t, srv, "/health", false)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "refcontest_registrations_total")

	status, env = get(t, srv, "/nope", false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}
