package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// LoadFromEnv loads configuration from environment variables
// Parameters:
// - envFilePath: Path to a .env file (or empty to try ENV_FILE_PATH, then ./.env)
func LoadFromEnv(envFilePath string) (*Config, error) {
	cfg := New()

	if envFilePath == "" {
		envFilePath = getEnvString("ENV_FILE_PATH", "")
	}

	if envFilePath != "" {
		// An explicitly requested file must exist
		if err := godotenv.Load(envFilePath); err != nil {
			return nil, fmt.Errorf("failed to load env file from %s: %w", envFilePath, err)
		}
	} else {
		_ = godotenv.Load() // Ignore errors if file doesn't exist
	}

	cfg.Claude = ClaudeConfig{
		APIKey:      getEnvString("CODECRITIC_CLAUDE_API_KEY", ""),
		BaseURL:     getEnvString("CODECRITIC_CLAUDE_BASE_URL", "https://api.anthropic.com"),
		APIVersion:  getEnvString("CODECRITIC_CLAUDE_API_VERSION", "2023-06-01"),
		Model:       getEnvString("CODECRITIC_CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		MaxTokens:   getEnvInt("CODECRITIC_CLAUDE_MAX_TOKENS", 4096),
		Timeout:     getEnvDuration("CODECRITIC_CLAUDE_TIMEOUT", 120*time.Second),
		StrictParse: getEnvBool("CODECRITIC_CLAUDE_STRICT_PARSE", false),
	}

	cfg.Database = DatabaseConfig{
		Driver:         getEnvString("CODECRITIC_DB_DRIVER", DriverSQLite),
		Path:           getEnvString("CODECRITIC_DB_PATH", "codecritic.db"),
		DSN:            getEnvString("CODECRITIC_DB_DSN", ""),
		BusyTimeout:    getEnvInt("CODECRITIC_DB_BUSY_TIMEOUT", 5000),
		JournalMode:    getEnvString("CODECRITIC_DB_JOURNAL_MODE", "WAL"),
		MaxOpenConns:   getEnvInt("CODECRITIC_DB_MAX_OPEN_CONNS", 10),
		MaxIdleConns:   getEnvInt("CODECRITIC_DB_MAX_IDLE_CONNS", 5),
		ConnMaxLife:    getEnvDuration("CODECRITIC_DB_CONN_MAX_LIFE", 5*time.Minute),
		ConnectRetries: getEnvInt("CODECRITIC_DB_CONNECT_RETRIES", 5),
		AutoMigrate:    getEnvBool("CODECRITIC_DB_AUTO_MIGRATE", true),
		QueryTimeout:   getEnvDuration("CODECRITIC_DB_QUERY_TIMEOUT", 30*time.Second),
	}

	// The write timeout must outlive the provider timeout
	cfg.HTTP = HTTPConfig{
		Addr:            getEnvString("CODECRITIC_HTTP_ADDR", ":8080"),
		ReadTimeout:     getEnvDuration("CODECRITIC_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("CODECRITIC_HTTP_WRITE_TIMEOUT", cfg.Claude.Timeout+30*time.Second),
		IdleTimeout:     getEnvDuration("CODECRITIC_HTTP_IDLE_TIMEOUT", 120*time.Second),
		ShutdownTimeout: getEnvDuration("CODECRITIC_HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getEnvInt64("CODECRITIC_HTTP_MAX_BODY_BYTES", 1<<20),
	}

	cfg.Logging = LoggingConfig{
		Level:      getEnvString("CODECRITIC_LOG_LEVEL", "info"),
		Format:     getEnvString("CODECRITIC_LOG_FORMAT", "text"),
		Output:     getEnvString("CODECRITIC_LOG_OUTPUT", "stdout"),
		AddSource:  getEnvBool("CODECRITIC_LOG_ADD_SOURCE", false),
		TimeFormat: getTimeFormat(getEnvString("CODECRITIC_LOG_TIME_FORMAT", "RFC3339")),
	}

	return cfg, cfg.Validate()
}
