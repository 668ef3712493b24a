package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ECOSISTEMA_ENV", "ECOSISTEMA_API_URL", "ECOSISTEMA_STORAGE", "ECOSISTEMA_STORAGE_PREFIX",
		"ECOSISTEMA_DB_PATH", "ECOSISTEMA_TOKEN_KEY", "ECOSISTEMA_REDIS_ADDR",
		"ECOSISTEMA_WARNING_WINDOW", "ECOSISTEMA_REFRESH_THRESHOLD", "ECOSISTEMA_AUTO_REFRESH",
		"ECOSISTEMA_HTTP_TIMEOUT", "ECOSISTEMA_LOGIN_ROUTE", "ECOSISTEMA_LOGOUT_ROUTE",
		"ECOSISTEMA_REGISTER_ROUTE", "ECOSISTEMA_LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ECOSISTEMA_TOKEN_KEY", "k")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, "http://localhost:5000/api/v1", cfg.APIBaseURL)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 5*time.Minute, cfg.WarningWindow)
	assert.Equal(t, 10*time.Minute, cfg.RefreshThreshold)
	assert.True(t, cfg.AutoRefresh)
	assert.Equal(t, "/dashboard", cfg.Routes.LoginSuccess)
	assert.Equal(t, "/login", cfg.Routes.LogoutSuccess)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ECOSISTEMA_ENV", "production")
	t.Setenv("ECOSISTEMA_STORAGE", "memory")
	t.Setenv("ECOSISTEMA_API_URL", "https://api.example.com")
	t.Setenv("ECOSISTEMA_WARNING_WINDOW", "2m")
	t.Setenv("ECOSISTEMA_AUTO_REFRESH", "false")
	t.Setenv("ECOSISTEMA_LOG_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment.Name)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 2*time.Minute, cfg.WarningWindow)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, zerolog.ErrorLevel, cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown environment", map[string]string{"ECOSISTEMA_ENV": "mars"}},
		{"sqlite without key", map[string]string{"ECOSISTEMA_STORAGE": "sqlite"}},
		{"unknown storage", map[string]string{"ECOSISTEMA_STORAGE": "floppy"}},
		{"bad duration", map[string]string{"ECOSISTEMA_STORAGE": "memory", "ECOSISTEMA_REFRESH_THRESHOLD": "soon"}},
		{"negative duration", map[string]string{"ECOSISTEMA_STORAGE": "memory", "ECOSISTEMA_WARNING_WINDOW": "-1m"}},
		{"bad bool", map[string]string{"ECOSISTEMA_STORAGE": "memory", "ECOSISTEMA_AUTO_REFRESH": "maybe"}},
		{"bad log level", map[string]string{"ECOSISTEMA_STORAGE": "memory", "ECOSISTEMA_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestWriteEnvFile_RoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	// godotenv never overrides variables that are present, even empty ones.
	for _, key := range []string{"ECOSISTEMA_STORAGE", "ECOSISTEMA_API_URL", "ECOSISTEMA_TOKEN_KEY"} {
		os.Unsetenv(key)
	}

	path, err := WriteEnvFile(map[string]string{
		"ECOSISTEMA_STORAGE":   "memory",
		"ECOSISTEMA_API_URL":   "https://api.example.com",
		"ECOSISTEMA_TOKEN_KEY": `k"with quotes`,
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	LoadEnvFile()
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, `k"with quotes`, cfg.TokenKey)
}

func TestMissingRequired(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, []string{"ECOSISTEMA_TOKEN_KEY"}, MissingRequired())

	t.Setenv("ECOSISTEMA_STORAGE", "redis")
	assert.Empty(t, MissingRequired())

	t.Setenv("ECOSISTEMA_STORAGE", "")
	t.Setenv("ECOSISTEMA_TOKEN_KEY", "k")
	assert.Empty(t, MissingRequired())
}
