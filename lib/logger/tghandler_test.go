package logger

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) GoAdmin(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func TestTelegramHandlerForwardsOnlyAboveMinLevel(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	n := &recordingNotifier{}
	log := slog.New(NewTelegramHandler(base, n, slog.LevelError))

	log.Info("registered", slog.Int64("user_id", 1))
	log.With(slog.String("mod", "contest")).Error("store failed", slog.String("error", "boom"))

	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "ERROR store failed")
	assert.Contains(t, n.msgs[0], "mod: contest")
	assert.Contains(t, n.msgs[0], "error: boom")
	assert.Contains(t, buf.String(), "registered")
	assert.Contains(t, buf.String(), "store failed")
}

func TestTelegramHandlerGroupPrefix(t *testing.T) {
	n := &recordingNotifier{}
	base := slog.NewTextHandler(&bytes.Buffer{}, nil)
	log := slog.New(NewTelegramHandler(base, n, slog.LevelWarn)).WithGroup("monitor")

	log.Warn("probe failed")

	require.Len(t, n.msgs, 1)
	assert.Contains(t, n.msgs[0], "WARN monitor.probe failed")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelError, ParseLevel("nonsense"))
}
