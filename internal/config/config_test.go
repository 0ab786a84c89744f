package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  api_key: "123:abc"
  admin_id: 42
  channel: "@contest_channel"
contest:
  cap: 500
`)
	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", conf.Env)
	assert.Equal(t, 500, conf.Contest.Cap)
	assert.Equal(t, time.Hour, conf.Contest.PollInterval)
	assert.Equal(t, 10*time.Minute, conf.Contest.RetryInterval)
	assert.Equal(t, 5, conf.Contest.LeaderboardSize)
	assert.Equal(t, 3, conf.Notify.Attempts)
	assert.Equal(t, 2*time.Second, conf.Notify.Delay)
	assert.Equal(t, DriverSQLite, conf.Store.Driver)
	assert.Equal(t, "contest-events", conf.Kafka.Topic)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing cap",
			body: `
telegram:
  api_key: "123:abc"
  admin_id: 42
  channel: "@c"
`,
		},
		{
			name: "unknown driver",
			body: `
telegram:
  api_key: "123:abc"
  admin_id: 42
  channel: "@c"
contest:
  cap: 10
store:
  driver: postgres
`,
		},
		{
			name: "unknown env",
			body: `
env: staging
telegram:
  api_key: "123:abc"
  admin_id: 42
  channel: "@c"
contest:
  cap: 10
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
