package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultWebhookPath, cfg.Telegram.WebhookPath)
	assert.Equal(t, 24*time.Hour, cfg.Cache.StateTTL.Duration)
	assert.Equal(t, DefaultMaxPendingCount, cfg.Watchdog.MaxPendingCount)
}

func TestLoadFileThenEnv(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[telegram]
token = "file-token"
webhook_url = "https://example.com/webhook"

[operators]
ids = [1, 2]

[cache]
state_ttl = "2h"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("TELEGRAM_TOKEN", "env-token")
	t.Setenv("ADMINS", "417951708,42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "https://example.com/webhook", cfg.Telegram.WebhookURL)
	assert.Equal(t, []int64{417951708, 42}, cfg.Operators.IDs)
	assert.Equal(t, 2*time.Hour, cfg.Cache.StateTTL.Duration)
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_URL=redis://cache:6379/1\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("REDIS_URL") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
}

func TestValidateReportsMissingFields(t *testing.T) {
	cfg := Defaults()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
	assert.Contains(t, err.Error(), "WEBHOOK_URL")
}

func TestValidateWebhookPathMatchesURL(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		path    string
		wantErr string
	}{
		{name: "match", url: "https://bot.example.com/webhook", path: "/webhook"},
		{name: "nested", url: "https://bot.example.com/tg/hook?x=1", path: "/tg/hook"},
		{name: "root", url: "https://bot.example.com", path: "/"},
		{name: "mismatch", url: "https://bot.example.com/telegram", path: "/webhook", wantErr: "does not match"},
		{name: "no host", url: "/webhook", path: "/webhook", wantErr: "invalid WEBHOOK_URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Telegram.Token = "123:abc"
			cfg.Telegram.WebhookURL = tc.url
			cfg.Telegram.WebhookPath = tc.path
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestOperators(t *testing.T) {
	ops := OperatorsConfig{IDs: []int64{7, 9}}
	assert.True(t, ops.Allowed(9))
	assert.False(t, ops.Allowed(8))
	primary, ok := ops.Primary()
	assert.True(t, ok)
	assert.Equal(t, int64(7), primary)

	_, ok = OperatorsConfig{}.Primary()
	assert.False(t, ok)
}

func TestListenAddr(t *testing.T) {
	assert.Equal(t, ":3000", ServerConfig{Addr: ":3000"}.ListenAddr())
	assert.Equal(t, ":8081", ServerConfig{Addr: ":3000", Port: "8081"}.ListenAddr())
}
