package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/config"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// InitCommandName is checked by the root command so that init can run
// before a configuration file exists
const InitCommandName = "init"

// InitCommand returns the CLI command for initializing codecritic
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  InitCommandName,
		Usage: "Write a sample configuration and prepare the database",
		Description: "Writes a documented .env template, then opens the configured " +
			"database and applies the embedded migrations. Run it for first-time setup " +
			"or after upgrading to pick up schema changes.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Where to write the configuration file",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Replace an existing configuration file, keeping a dated backup",
			},
		},
		Action: func(c *cli.Context) error {
			utils.PrintHeading("Initializing codecritic")

			envPath := c.String("path")
			written, backup, err := config.WriteSampleEnv(envPath, c.Bool("force"))
			if err != nil {
				utils.PrintError(fmt.Sprintf("Failed to write configuration file: %s", err))
				return fmt.Errorf("failed to write configuration file: %w", err)
			}

			switch {
			case backup != "":
				utils.PrintWarning("Existing configuration backed up to " + color.YellowString("%s", backup))
			case !written:
				utils.PrintInfo("Keeping existing configuration file")
			}

			application, err := app.New(c.Context, envPath)
			if err != nil {
				utils.PrintError(err.Error())
				return err
			}
			defer application.Shutdown()

			utils.PrintInfo("Applying database migrations...")
			if err := application.DB.RunMigrations(c.Context); err != nil {
				utils.PrintError(fmt.Sprintf("Failed to apply migrations: %s", err))
				return fmt.Errorf("failed to apply migrations: %w", err)
			}

			cfg := application.Config
			utils.PrintSuccess("✓ codecritic initialized successfully!")
			utils.PrintInfo("Configuration file: " + color.YellowString("%s", envPath))
			if cfg.Database.Driver == config.DriverSQLite {
				utils.PrintInfo("Database location: " + color.YellowString("%s", cfg.Database.Path))
			} else {
				utils.PrintInfo("Database driver: " + color.YellowString("%s", cfg.Database.Driver))
			}
			if cfg.Claude.APIKey == "" {
				utils.PrintWarning("Set CODECRITIC_CLAUDE_API_KEY before requesting reviews")
			}
			fmt.Fprintln(utils.Output)
			utils.PrintInfo("You can now run " + color.CyanString("codecritic serve") + " to start the API.")

			return nil
		},
	}
}
