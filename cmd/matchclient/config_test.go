package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "matchclient.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppConfigDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
address = "coordinator.example.com"
poll_interval = "5s"
max_errors_until_cancel = 2
user_id = 76561198000000001
auth_token = "ticket"
region = "eu"
`)

	cfg, err := loadAppConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "coordinator.example.com", cfg.Client.Address)
	assert.Equal(t, "https", cfg.Client.Scheme)
	assert.Equal(t, 5*time.Second, cfg.Client.PollInterval)
	assert.Equal(t, 3, cfg.Client.MaxRetriesUntilFail)
	assert.Equal(t, 2, cfg.Client.MaxErrorsUntilCancel)
	assert.Equal(t, 10*time.Second, cfg.Client.RequestTimeout)
	assert.Equal(t, uint64(76561198000000001), cfg.UserID)
	assert.Equal(t, "ticket", cfg.AuthToken)
	assert.Equal(t, "eu", cfg.Region)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadAppConfigEnvironmentWins(t *testing.T) {
	path := writeConfig(t, `
address = "coordinator.example.com"
region = "eu"
`)
	t.Setenv("MM_REGION", "na")
	t.Setenv("MM_POLL_INTERVAL", "250ms")
	t.Setenv("MM_USER_ID", "9")

	cfg, err := loadAppConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "na", cfg.Region)
	assert.Equal(t, 250*time.Millisecond, cfg.Client.PollInterval)
	assert.Equal(t, uint64(9), cfg.UserID)
}

func TestLoadAppConfigRequiresAddress(t *testing.T) {
	_, err := loadAppConfig(writeConfig(t, `region = "na"`))
	assert.Error(t, err)
}

func TestLoadAppConfigRejectsInvalidValues(t *testing.T) {
	for _, content := range []string{
		"address = \"c\"\npoll_interval = \"soon\"",
		"address = \"c\"\npoll_interval = \"0s\"",
		"address = \"c\"\nmax_retries_until_fail = 0",
		"address = \"c\"\nmax_errors_until_cancel = -1",
		"address = \"c\"\nmax_errors_until_cancel = 0",
	} {
		_, err := loadAppConfig(writeConfig(t, content))
		assert.Error(t, err, content)
	}
}

func TestSetLogging(t *testing.T) {
	assert.NoError(t, setLogging("disabled"))
	assert.NoError(t, setLogging("debug"))
	assert.Error(t, setLogging("verbose"))
	assert.NoError(t, setLogging("disabled"))
}
