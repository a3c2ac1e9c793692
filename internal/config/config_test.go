package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadRequiresToken(t *testing.T) {
	withEnv(t, "TELEGRAM_BOT_TOKEN", "")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestLoadDefaults(t *testing.T) {
	withEnv(t, "TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramBaseURL)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.AgentBaseURL)
	assert.Equal(t, "telegram-bot", cfg.AgentProcessorID)
	assert.Equal(t, 60*time.Second, cfg.AgentTimeout)
	assert.Equal(t, 30*time.Second, cfg.PollTimeout)
	assert.Equal(t, "EN", cfg.DefaultLanguage)
	assert.Equal(t, "INFO", cfg.LogLevel)
}

func TestLoadFileWithCommentsAndInterpolation(t *testing.T) {
	withEnv(t, "TELEGRAM_BOT_TOKEN", "")
	withEnv(t, "SKELBOT_TEST_TOKEN", "777:secret")

	dir := t.TempDir()
	path := filepath.Join(dir, "skelbot.jsonc")
	content := `{
		// local development settings
		"telegram_bot_token": "{env:SKELBOT_TEST_TOKEN}",
		"agent_base_url": "http://agent.local:9000/",
		"agent_timeout": "90s",
		"default_language": "ID",
		"port": 9090,
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "777:secret", cfg.TelegramBotToken)
	assert.Equal(t, "http://agent.local:9000", cfg.AgentBaseURL)
	assert.Equal(t, 90*time.Second, cfg.AgentTimeout)
	assert.Equal(t, "ID", cfg.DefaultLanguage)
	assert.Equal(t, 9090, cfg.Port)
}

func TestEnvOverridesFile(t *testing.T) {
	withEnv(t, "TELEGRAM_BOT_TOKEN", "env-token")
	withEnv(t, "AGENT_BASE_URL", "http://from-env:8000")

	dir := t.TempDir()
	path := filepath.Join(dir, "skelbot.jsonc")
	content := `{"telegram_bot_token": "file-token", "agent_base_url": "http://from-file:8000"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.TelegramBotToken)
	assert.Equal(t, "http://from-env:8000", cfg.AgentBaseURL)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	withEnv(t, "TELEGRAM_BOT_TOKEN", "123:abc")

	dir := t.TempDir()
	path := filepath.Join(dir, "skelbot.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"agent_timeout": "soon"}`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
