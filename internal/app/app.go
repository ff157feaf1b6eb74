// Package app provides the application initialization and lifecycle management
package app

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/claude"
	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/database"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/review"
)

// App represents the application instance with its dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Review *review.Service
	Logger *loggy.Logger
}

// New initializes a new application instance with all its dependencies.
// envFile may be empty to use ENV_FILE_PATH or ./.env.
func New(ctx context.Context, envFile string) (*App, error) {
	cfg, err := config.LoadFromEnv(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := initLogger(cfg); err != nil {
		return nil, err
	}

	loggy.Info("Application initializing",
		"log_level", cfg.Logging.Level,
		"db_driver", cfg.Database.Driver,
	)

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app := NewWithDB(cfg, db)
	loggy.Info("Application initialized successfully")
	return app, nil
}

// NewWithDB wires the services on top of an already opened database
func NewWithDB(cfg *config.Config, db *database.DB) *App {
	logger := loggy.GetGlobalLogger()

	if cfg.Claude.APIKey == "" {
		loggy.Warn("CODECRITIC_CLAUDE_API_KEY is not set, review requests will be rejected by the provider")
	}

	client := claude.NewClient(cfg.Claude)
	reviewer := review.NewReviewer(client, cfg.Claude, logger)
	repo := review.NewSQLRepository(db.DB, cfg.Database.QueryTimeout, logger)

	return &App{
		Config: cfg,
		DB:     db,
		Review: review.NewService(repo, reviewer),
		Logger: logger,
	}
}

// initLogger initializes the logging system
func initLogger(cfg *config.Config) error {
	err := loggy.Init(loggy.Config{
		Level:      config.ParseLogLevel(cfg.Logging.Level),
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the application
func (app *App) Shutdown() error {
	loggy.Info("Shutting down application")

	if err := app.DB.Close(); err != nil {
		loggy.Error("Error closing database connection", "error", err)
		return err
	}

	return nil
}

// FromContext retrieves the App instance from the CLI context
func FromContext(c *cli.Context) (*App, error) {
	if c.App.Metadata == nil {
		return nil, fmt.Errorf("app metadata not found in context")
	}

	app, ok := c.App.Metadata["app"].(*App)
	if !ok {
		return nil, fmt.Errorf("app instance not found in context")
	}

	return app, nil
}
