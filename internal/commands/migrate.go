package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// MigrateCommand returns the CLI command for database migrations
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}

					utils.PrintInfo(fmt.Sprintf("Applying embedded %s migrations", application.DB.Driver()))
					if err := application.DB.RunMigrations(c.Context); err != nil {
						utils.PrintError(fmt.Sprintf("Failed to apply migrations: %s", err))
						return fmt.Errorf("failed to apply migrations: %w", err)
					}

					return printVersion(c, application)
				},
			},
			{
				Name:  "down",
				Usage: "Revert the last migration",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "steps",
						Usage: "Number of migrations to revert",
						Value: 1,
					},
				},
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}

					steps := c.Int("steps")
					utils.PrintWarning(fmt.Sprintf("Reverting %d embedded migration(s)", steps))

					if err := application.DB.RevertMigrations(c.Context, steps); err != nil {
						utils.PrintError(fmt.Sprintf("Failed to revert migrations: %s", err))
						return fmt.Errorf("failed to revert migrations: %w", err)
					}

					utils.PrintSuccess("Migration(s) reverted successfully!")
					return printVersion(c, application)
				},
			},
			{
				Name:  "version",
				Usage: "Show the applied schema version",
				Action: func(c *cli.Context) error {
					application, err := app.FromContext(c)
					if err != nil {
						return err
					}
					return printVersion(c, application)
				},
			},
			{
				Name:  "create",
				Usage: "Create a new migration pair (development only)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Usage:    "Name of the migration (eg: add_reviews_author)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "path",
						Usage: "Directory where migration files will be created",
						Value: filepath.Join("internal", "migrations", "sql", "sqlite"),
					},
				},
				Action: func(c *cli.Context) error {
					upFile, downFile, err := createMigration(c.String("path"), c.String("name"))
					if err != nil {
						utils.PrintError(err.Error())
						return err
					}

					utils.PrintSuccess("Migration created successfully!")
					utils.PrintKeyValue("Up", upFile)
					utils.PrintKeyValue("Down", downFile)
					utils.PrintWarning("Add the same version for every dialect under internal/migrations/sql and rebuild to embed it.")
					return nil
				},
			},
		},
	}
}

func printVersion(c *cli.Context, application *app.App) error {
	version, dirty, ok, err := application.DB.MigrationVersion(c.Context)
	if err != nil {
		utils.PrintError(fmt.Sprintf("Failed to read migration version: %s", err))
		return err
	}

	if !ok {
		utils.PrintInfo("No migrations applied")
		return nil
	}

	utils.PrintKeyValue("Schema version", strconv.FormatUint(uint64(version), 10))
	if dirty {
		utils.PrintWarning("Database is in a dirty state")
	}
	return nil
}

// createMigration writes an empty up/down pair numbered after the highest
// existing migration in dir
func createMigration(dir, name string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\ `) {
		return "", "", fmt.Errorf("invalid migration name %q", name)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	next, err := nextMigrationNumber(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to determine next migration number: %w", err)
	}

	upFile := filepath.Join(dir, fmt.Sprintf("%06d_%s.up.sql", next, name))
	downFile := filepath.Join(dir, fmt.Sprintf("%06d_%s.down.sql", next, name))

	if err := os.WriteFile(upFile, []byte("-- Write your UP migration SQL here\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to create up migration file: %w", err)
	}
	if err := os.WriteFile(downFile, []byte("-- Write your DOWN migration SQL here\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to create down migration file: %w", err)
	}

	return upFile, downFile, nil
}

// nextMigrationNumber scans dir for NNNNNN_name.up.sql files and returns the
// highest number plus one
func nextMigrationNumber(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}

	numbers := []int{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		prefix, _, found := strings.Cut(entry.Name(), "_")
		if !found {
			continue
		}
		if num, err := strconv.Atoi(prefix); err == nil {
			numbers = append(numbers, num)
		}
	}

	if len(numbers) == 0 {
		return 1, nil
	}

	sort.Ints(numbers)
	return numbers[len(numbers)-1] + 1, nil
}
