// Package database opens the SQLite or PostgreSQL store and applies the
// embedded schema migrations.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/jmoiron/sqlx"

	// database/sql drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
	"github.com/tildaslashalef/codecritic/internal/migrations"
)

const pingTimeout = 5 * time.Second

// DB is a wrapper around the sqlx.DB connection pool
type DB struct {
	*sqlx.DB
	driver string
}

// Open connects to the configured database, retrying the initial ping with
// exponential backoff
func Open(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	loggy.Info("Initializing database", "driver", cfg.Driver, "path", cfg.Path)

	conn, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	configurePool(conn, cfg)

	attempt := 0
	operation := func() error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		err := conn.PingContext(pingCtx)
		if err != nil {
			loggy.Warn("Database ping failed", "attempt", attempt, "error", err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(cfg.ConnectRetries)), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", attempt, err)
	}

	loggy.Info("Database initialized successfully", "driver", cfg.Driver)
	return &DB{DB: conn, driver: cfg.Driver}, nil
}

// Driver returns the database/sql driver name
func (db *DB) Driver() string {
	return db.driver
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

func configurePool(conn *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.Driver == config.DriverSQLite {
		// SQLite supports only one writer at a time
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		if isMemoryPath(cfg.Path) {
			// An in-memory database lives only as long as its connection
			conn.SetConnMaxLifetime(0)
			return
		}
		conn.SetConnMaxLifetime(cfg.ConnMaxLife)
		return
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLife)
}

func dataSourceName(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		if !isMemoryPath(cfg.Path) {
			if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
				return "", fmt.Errorf("creating database directory: %w", err)
			}
		}
		return buildSQLiteDSN(cfg), nil
	case config.DriverPostgres:
		if cfg.DSN == "" {
			return "", errors.New("postgres DSN cannot be empty")
		}
		return cfg.DSN, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// buildSQLiteDSN builds a SQLite DSN with additional parameters
func buildSQLiteDSN(cfg config.DatabaseConfig) string {
	if isMemoryPath(cfg.Path) {
		return cfg.Path
	}

	params := url.Values{}
	params.Add("_busy_timeout", strconv.Itoa(cfg.BusyTimeout))
	if cfg.JournalMode != "" {
		params.Add("_journal_mode", cfg.JournalMode)
	}
	params.Add("_foreign_keys", "true")

	return fmt.Sprintf("%s?%s", cfg.Path, params.Encode())
}

// RunMigrations applies all pending migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	m, cleanup, err := db.newMigrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	_, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	if dirty {
		return errors.New("failed to apply migrations: database is in dirty state, fix the failed migration and force the version")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		loggy.Error("Failed to apply migrations", "error", err)
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	loggy.Info("Database migration complete", "version", version, "dirty", dirty)
	return nil
}

// RevertMigrations reverts migrations back by the specified number of steps
func (db *DB) RevertMigrations(ctx context.Context, steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	m, cleanup, err := db.newMigrator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		loggy.Error("Failed to revert migrations", "error", err)
		return fmt.Errorf("failed to revert migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	loggy.Info("Database migration reversion complete", "version", version, "dirty", dirty)
	return nil
}

// MigrationVersion returns the applied schema version. ok is false when no
// migration has been applied yet.
func (db *DB) MigrationVersion(ctx context.Context) (version uint, dirty bool, ok bool, err error) {
	m, cleanup, err := db.newMigrator(ctx)
	if err != nil {
		return 0, false, false, err
	}
	defer cleanup()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, true, nil
}

// newMigrator builds a migrator over the embedded migrations for the current
// driver. The returned cleanup must be called instead of m.Close, which would
// also close the shared pool.
func (db *DB) newMigrator(ctx context.Context) (*migrate.Migrate, func(), error) {
	src, err := migrations.GetSource(db.driver)
	if err != nil {
		return nil, nil, err
	}

	var (
		driver    migratedb.Driver
		closeConn func() error
	)

	switch db.driver {
	case config.DriverSQLite:
		driver, err = sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
	case config.DriverPostgres:
		var conn *sql.Conn
		conn, err = db.DB.Conn(ctx)
		if err != nil {
			break
		}
		closeConn = conn.Close
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.driver)
	}

	cleanup := func() {
		_ = src.Close()
		if closeConn != nil {
			_ = closeConn()
		}
	}

	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.driver, driver)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, cleanup, nil
}
