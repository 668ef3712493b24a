package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	AppName     = "ecosistema-session"
	EnvFileName = "config.env"
)

// Storage backends selectable with ECOSISTEMA_STORAGE.
const (
	StorageMemory  = "memory"
	StorageSQLite  = "sqlite"
	StorageRedis   = "redis"
	StorageKeyring = "keyring"
)

// Environment is one row of the per-environment table.
type Environment struct {
	Name        string
	APIBaseURL  string
	AutoRefresh bool
	LogLevel    zerolog.Level
}

var environments = map[string]Environment{
	"development": {
		Name:        "development",
		APIBaseURL:  "http://localhost:5000/api/v1",
		AutoRefresh: true,
		LogLevel:    zerolog.DebugLevel,
	},
	"staging": {
		Name:        "staging",
		APIBaseURL:  "https://staging.ecosistema-emprendimiento.com/api/v1",
		AutoRefresh: true,
		LogLevel:    zerolog.InfoLevel,
	},
	"production": {
		Name:        "production",
		APIBaseURL:  "https://ecosistema-emprendimiento.com/api/v1",
		AutoRefresh: true,
		LogLevel:    zerolog.WarnLevel,
	},
}

// Routes the session controller redirects to.
type Routes struct {
	LoginSuccess    string
	LogoutSuccess   string
	RegisterSuccess string
}

// Config is the resolved client configuration.
type Config struct {
	Environment Environment
	APIBaseURL  string
	HTTPTimeout time.Duration

	Storage       string
	StoragePrefix string
	DBPath        string
	TokenKey      string
	RedisAddr     string

	WarningWindow    time.Duration
	RefreshThreshold time.Duration
	AutoRefresh      bool

	Routes   Routes
	LogLevel zerolog.Level
}

// Dir returns the application's config directory, creating it if needed.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	dir := filepath.Join(configBase, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// FilePath returns the full path to the env file.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	configPath, err := FilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// WriteEnvFile saves values to the config file with owner-only permissions
// and returns its path.
func WriteEnvFile(values map[string]string) (string, error) {
	configPath, err := FilePath()
	if err != nil {
		return "", err
	}
	content, err := godotenv.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(content+"\n"), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}

// MissingRequired returns the names of required variables that are unset
// for the selected storage backend.
func MissingRequired() []string {
	var missing []string
	if getenv("ECOSISTEMA_STORAGE", StorageSQLite) == StorageSQLite && os.Getenv("ECOSISTEMA_TOKEN_KEY") == "" {
		missing = append(missing, "ECOSISTEMA_TOKEN_KEY")
	}
	return missing
}

// Load builds the configuration from the environment.
func Load() (*Config, error) {
	envName := getenv("ECOSISTEMA_ENV", "development")
	env, ok := environments[envName]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q", envName)
	}

	cfg := &Config{
		Environment:   env,
		APIBaseURL:    getenv("ECOSISTEMA_API_URL", env.APIBaseURL),
		Storage:       getenv("ECOSISTEMA_STORAGE", StorageSQLite),
		StoragePrefix: getenv("ECOSISTEMA_STORAGE_PREFIX", "ecosistema_"),
		DBPath:        getenv("ECOSISTEMA_DB_PATH", "session.db"),
		TokenKey:      os.Getenv("ECOSISTEMA_TOKEN_KEY"),
		RedisAddr:     getenv("ECOSISTEMA_REDIS_ADDR", "localhost:6379"),
		Routes: Routes{
			LoginSuccess:    getenv("ECOSISTEMA_LOGIN_ROUTE", "/dashboard"),
			LogoutSuccess:   getenv("ECOSISTEMA_LOGOUT_ROUTE", "/login"),
			RegisterSuccess: getenv("ECOSISTEMA_REGISTER_ROUTE", "/login?registered=1"),
		},
	}

	var err error
	if cfg.HTTPTimeout, err = durationEnv("ECOSISTEMA_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.WarningWindow, err = durationEnv("ECOSISTEMA_WARNING_WINDOW", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RefreshThreshold, err = durationEnv("ECOSISTEMA_REFRESH_THRESHOLD", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AutoRefresh, err = boolEnv("ECOSISTEMA_AUTO_REFRESH", env.AutoRefresh); err != nil {
		return nil, err
	}

	cfg.LogLevel = env.LogLevel
	if s := os.Getenv("ECOSISTEMA_LOG_LEVEL"); s != "" {
		if cfg.LogLevel, err = zerolog.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("ECOSISTEMA_LOG_LEVEL: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory, StorageRedis, StorageKeyring:
	case StorageSQLite:
		if c.TokenKey == "" {
			return fmt.Errorf("ECOSISTEMA_TOKEN_KEY is required for sqlite storage")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL is empty")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
