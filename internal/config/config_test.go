package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "sandy")
	t.Setenv("HTTP_PORT", "8000")
	t.Setenv("JWT_SECRET", "s3cret")
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("HTTP_PORT", "8000")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.NotContains(t, err.Error(), "HTTP_PORT")
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_POOL_MAX_CONNS", "25")
	t.Setenv("BCRYPT_ROUNDS", "10")
	t.Setenv("CONVERSATION_RETENTION_DAYS", "30")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_SESSION_CACHE_TTL", "15s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sandy", cfg.App.AppName)
	assert.Equal(t, "db.internal", cfg.Database.DBHost)
	assert.Equal(t, "5432", cfg.Database.DBPort)
	assert.Equal(t, int32(25), cfg.Database.PoolMaxConns)
	assert.Equal(t, 10, cfg.Auth.BcryptRounds)
	assert.Equal(t, 30, cfg.Retention.ConversationDays)
	assert.Equal(t, 365, cfg.Retention.AnalyticsDays)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.Redis.SessionCacheTTL)
	assert.Equal(t, "auth-token", cfg.Auth.CookieName)
}

func TestLoad_ConfigFileBelowEnv(t *testing.T) {
	setRequired(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "app:\n  name: from-file\n  env: staging\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sandy", cfg.App.AppName, "env wins over file")
	assert.Equal(t, "staging", cfg.App.Environment)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseExpiresIn(t *testing.T) {
	fallback := 7 * 24 * time.Hour
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", fallback},
		{"7d", 7 * 24 * time.Hour},
		{"1d", 24 * time.Hour},
		{"3600", time.Hour},
		{"90m", 90 * time.Minute},
		{"0", fallback},
		{"-3d", fallback},
		{"soon", fallback},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseExpiresIn(tc.in, fallback), "input %q", tc.in)
	}
}

func TestAuthConfig_RefreshSecretFallback(t *testing.T) {
	a := AuthConfig{JWTSecret: "access"}
	assert.Equal(t, "access", a.RefreshSecret())

	a.JWTRefreshSecret = "refresh"
	assert.Equal(t, "refresh", a.RefreshSecret())
}
