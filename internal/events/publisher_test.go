package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refcontest/entity"
	"refcontest/internal/config"
)

func TestNew_NoBrokersIsNop(t *testing.T) {
	p, err := New(config.KafkaConfig{Topic: "contest-events"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)

	// must not panic
	p.Publish(context.Background(), entity.Event{Type: entity.EventContestEnded})
	p.Close()
}
