package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvString(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue string
		expected     string
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: "default",
			expected:     "default",
		},
		{
			name:         "env set, return env value",
			envValue:     "custom",
			defaultValue: "default",
			expected:     "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_STRING_VALUE"
			if tt.envValue != "" {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvString(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		expected     int
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: 100,
			expected:     100,
		},
		{
			name:         "env set to valid int, return int value",
			envValue:     "200",
			defaultValue: 100,
			expected:     200,
		},
		{
			name:         "env set to invalid int, return default",
			envValue:     "not_an_int",
			defaultValue: 100,
			expected:     100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_INT_VALUE"
			if tt.envValue != "" {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvInt(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		expected     bool
	}{
		{
			name:         "env not set, return default",
			envValue:     "",
			defaultValue: true,
			expected:     true,
		},
		{
			name:         "env set to true, return true",
			envValue:     "true",
			defaultValue: false,
			expected:     true,
		},
		{
			name:         "env set to invalid bool, return default",
			envValue:     "not_a_bool",
			defaultValue: true,
			expected:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "TEST_BOOL_VALUE"
			if tt.envValue != "" {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			result := getEnvBool(key, tt.defaultValue)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION_VALUE", "90s")
	assert.Equal(t, 90*time.Second, getEnvDuration("TEST_DURATION_VALUE", time.Second))

	t.Setenv("TEST_DURATION_VALUE", "ninety")
	assert.Equal(t, time.Second, getEnvDuration("TEST_DURATION_VALUE", time.Second))
}

func TestGetEnvInt64(t *testing.T) {
	t.Setenv("TEST_INT64_VALUE", "2097152")
	assert.Equal(t, int64(2097152), getEnvInt64("TEST_INT64_VALUE", 1))
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Empty(t, cfg.Claude.APIKey)
	assert.Empty(t, cfg.Claude.Model)
	assert.Zero(t, cfg.Claude.MaxTokens)
	assert.Empty(t, cfg.Database.Driver)
	assert.Empty(t, cfg.HTTP.Addr)
	assert.Empty(t, cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CODECRITIC_DB_PATH", filepath.Join(dir, "reviews.db"))
	t.Setenv("CODECRITIC_CLAUDE_MAX_TOKENS", "2048")

	cfg, err := LoadFromEnv("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.anthropic.com", cfg.Claude.BaseURL)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Claude.Model)
	assert.Equal(t, "2023-06-01", cfg.Claude.APIVersion)
	assert.Equal(t, 2048, cfg.Claude.MaxTokens)
	assert.Equal(t, 120*time.Second, cfg.Claude.Timeout)
	assert.False(t, cfg.Claude.StrictParse)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, filepath.Join(dir, "reviews.db"), cfg.Database.Path)
	assert.True(t, cfg.Database.AutoMigrate)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Greater(t, cfg.HTTP.WriteTimeout, cfg.Claude.Timeout)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodyBytes)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, time.RFC3339, cfg.Logging.TimeFormat)
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "CODECRITIC_CLAUDE_MODEL=claude-test-model\n" +
		"CODECRITIC_DB_PATH=" + filepath.Join(dir, "file.db") + "\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	// godotenv does not override variables that are already set
	os.Unsetenv("CODECRITIC_CLAUDE_MODEL")
	os.Unsetenv("CODECRITIC_DB_PATH")
	t.Cleanup(func() {
		os.Unsetenv("CODECRITIC_CLAUDE_MODEL")
		os.Unsetenv("CODECRITIC_DB_PATH")
	})

	cfg, err := LoadFromEnv(envFile)
	require.NoError(t, err)
	assert.Equal(t, "claude-test-model", cfg.Claude.Model)
	assert.Equal(t, filepath.Join(dir, "file.db"), cfg.Database.Path)

	_, err = LoadFromEnv(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()

	cfg := New()
	cfg.Claude = ClaudeConfig{
		BaseURL:   "https://api.anthropic.com",
		Model:     "model",
		MaxTokens: 1024,
		Timeout:   time.Minute,
	}
	cfg.Database = DatabaseConfig{
		Driver:       DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:  5000,
		ConnMaxLife:  5 * time.Minute,
		QueryTimeout: 30 * time.Second,
	}
	cfg.HTTP = HTTPConfig{Addr: ":8080", MaxBodyBytes: 1024}
	cfg.Logging = LoggingConfig{Level: "info", Format: "text"}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		expectErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:      "missing model",
			mutate:    func(c *Config) { c.Claude.Model = "" },
			expectErr: "claude config",
		},
		{
			name:      "non-positive max tokens",
			mutate:    func(c *Config) { c.Claude.MaxTokens = 0 },
			expectErr: "max_tokens must be positive",
		},
		{
			name:      "unknown driver",
			mutate:    func(c *Config) { c.Database.Driver = "oracle" },
			expectErr: "unsupported driver",
		},
		{
			name: "postgres without dsn",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.DSN = ""
			},
			expectErr: "dsn cannot be empty",
		},
		{
			name: "postgres with dsn",
			mutate: func(c *Config) {
				c.Database.Driver = DriverPostgres
				c.Database.DSN = "postgres://localhost/codecritic?sslmode=disable"
			},
		},
		{
			name:      "in-memory sqlite",
			mutate:    func(c *Config) { c.Database.Path = ":memory:" },
			expectErr: "",
		},
		{
			name:      "empty listen address",
			mutate:    func(c *Config) { c.HTTP.Addr = "" },
			expectErr: "http config",
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			expectErr: "logging config",
		},
		{
			name:      "invalid log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			expectErr: "invalid log format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}
}

func TestParseLoglevel(t *testing.T) {
	tests := []struct {
		level  string
		expect slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"none", slog.Level(9999)},
		{"invalid", slog.LevelInfo}, // Default to info for invalid levels
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level := ParseLogLevel(tt.level)
			assert.Equal(t, tt.expect, level)
		})
	}
}

func TestGetTimeFormat(t *testing.T) {
	assert.Equal(t, time.RFC3339, getTimeFormat("RFC3339"))
	assert.Equal(t, time.DateTime, getTimeFormat("DateTime"))
	assert.Equal(t, "15:04", getTimeFormat("15:04"))
}

func TestCheckDirectoryWritable(t *testing.T) {
	tempDir := t.TempDir()

	err := checkDirectoryWritable(tempDir)
	assert.NoError(t, err)

	err = checkDirectoryWritable("/path/that/does/not/exist")
	assert.Error(t, err)
}
