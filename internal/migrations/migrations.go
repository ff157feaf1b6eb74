// Package migrations provides embedded SQL migrations for the application
package migrations

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/loggy"
)

//go:embed sql
var migrationsFS embed.FS

// dialectDirs maps a database driver to its migrations directory
var dialectDirs = map[string]string{
	config.DriverSQLite:   "sql/sqlite",
	config.DriverPostgres: "sql/postgres",
}

// GetSource creates a migrate.Source from the embedded migrations for driver
func GetSource(driver string) (source.Driver, error) {
	dir, ok := dialectDirs[driver]
	if !ok {
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}

	migrationFS, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access embedded migrations: %w", err)
	}

	src, err := iofs.New(migrationFS, ".")
	if err != nil {
		loggy.Error("Failed to create migration source", "driver", driver, "error", err)
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	return src, nil
}
