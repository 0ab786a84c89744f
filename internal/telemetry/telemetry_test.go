package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"refcontest/internal/config"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{}, "local")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Endpoint: "http://127.0.0.1:4318"}, "dev")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	// nothing was recorded, so shutdown does not need the collector
	require.NoError(t, shutdown(context.Background()))
}
