package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Claude   ClaudeConfig
	Database DatabaseConfig
	HTTP     HTTPConfig
	Logging  LoggingConfig
}

// ClaudeConfig holds Anthropic Messages API configuration
type ClaudeConfig struct {
	APIKey     string        // Anthropic API key
	BaseURL    string        // API base URL, /v1/messages is appended
	APIVersion string        // Value of the anthropic-version header
	Model      string        // Model identifier sent with every request
	MaxTokens  int           // max_tokens budget for the generated review
	Timeout    time.Duration // HTTP client timeout for a single call

	// StrictParse makes a well-formed response without a text block fail
	// with ErrUnparsableResponse instead of degrading to the fallback text.
	StrictParse bool
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Driver         string        // sqlite3 or postgres
	Path           string        // Path to the SQLite database file
	DSN            string        // PostgreSQL connection string
	BusyTimeout    int           // SQLite busy timeout in milliseconds
	JournalMode    string        // SQLite journal mode (WAL recommended)
	MaxOpenConns   int           // Maximum open connections (PostgreSQL)
	MaxIdleConns   int           // Maximum idle connections (PostgreSQL)
	ConnMaxLife    time.Duration // Maximum connection lifetime
	ConnectRetries int           // Ping attempts on startup before giving up
	AutoMigrate    bool          // Apply embedded migrations when the server starts
	QueryTimeout   time.Duration // Per-operation timeout for store calls
}

// HTTPConfig holds the API server configuration
type HTTPConfig struct {
	Addr            string        // Listen address, e.g. ":8080"
	ReadTimeout     time.Duration // http.Server ReadTimeout
	WriteTimeout    time.Duration // http.Server WriteTimeout, must cover the provider call
	IdleTimeout     time.Duration // http.Server IdleTimeout
	ShutdownTimeout time.Duration // Grace period for in-flight requests
	MaxBodyBytes    int64         // Request body limit
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string // debug, info, warn, error
	Format     string // text or json
	Output     string // stdout, stderr, or file path
	AddSource  bool   // Include source code position in logs
	TimeFormat string // Time format for logs (empty uses RFC3339)
}

// New returns a new empty Config
func New() *Config {
	return &Config{
		Claude:   ClaudeConfig{},
		Database: DatabaseConfig{},
		HTTP:     HTTPConfig{},
		Logging:  LoggingConfig{},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.validateClaude(); err != nil {
		return fmt.Errorf("claude config: %w", err)
	}

	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.validateHTTP(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ParseLogLevel parses a log level string to a slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "none":
		// Set to a very high level that won't be triggered
		return slog.Level(9999)
	default:
		return slog.LevelInfo
	}
}

// validateClaude checks the provider settings. The API key is not required
// here so that migrations and read-only CLI commands work without one.
func (c *Config) validateClaude() error {
	if c.Claude.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if c.Claude.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}

	if c.Claude.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}

	if c.Claude.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path cannot be empty")
		}
		if c.Database.Path == ":memory:" {
			break
		}

		dir := filepath.Dir(c.Database.Path)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory for database: %w", err)
			}
		}

		if err := checkDirectoryWritable(dir); err != nil {
			return fmt.Errorf("database directory: %w", err)
		}

		if c.Database.BusyTimeout <= 0 {
			return fmt.Errorf("busy timeout must be positive")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("dsn cannot be empty for postgres")
		}
	default:
		return fmt.Errorf("unsupported driver: %q", c.Database.Driver)
	}

	if c.Database.ConnMaxLife <= 0 {
		return fmt.Errorf("connection max life must be positive")
	}

	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("query timeout must be positive")
	}

	return nil
}

func (c *Config) validateHTTP() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("listen address cannot be empty")
	}

	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" && level != "none" {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}

// getEnvString returns a string from the environment variable
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an int from the environment variable
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 from the environment variable
func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool returns a bool from the environment variable
func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration returns a time.Duration from the environment variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getTimeFormat converts a named time format to its actual format string
func getTimeFormat(name string) string {
	switch name {
	case "RFC3339":
		return time.RFC3339
	case "RFC3339Nano":
		return time.RFC3339Nano
	case "Kitchen":
		return time.Kitchen
	case "StampMilli":
		return time.StampMilli
	case "DateTime":
		return time.DateTime
	case "DateTimeMS":
		return "2006-01-02 15:04:05.000"
	default:
		return name
	}
}

// checkDirectoryWritable tests if a directory is writable
func checkDirectoryWritable(dir string) error {
	testFile := filepath.Join(dir, fmt.Sprintf("test_write_%d", time.Now().UnixNano()))
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("directory not writable: %w", err)
	}

	f.Close()
	os.Remove(testFile)

	return nil
}
