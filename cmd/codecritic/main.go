package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/commands"
)

// Version information - populated at build time
var (
	Version    = "dev"
	BuildTime  = "unknown"
	CommitHash = "unknown"
)

func main() {
	cliApp := &cli.App{
		Name:  "codecritic",
		Usage: "LLM-powered code review service",
		Description: "codecritic accepts code snippets, asks Claude for a review and stores the result.\n\n" +
			"When run without subcommands it starts the HTTP API (same as `codecritic serve`).",
		Version: fmt.Sprintf("%s (%s)", Version, CommitHash),
		Compiled: func() time.Time {
			t, err := time.Parse(time.RFC3339, BuildTime)
			if err != nil {
				return time.Now()
			}
			return t
		}(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Path to a .env file (defaults to ENV_FILE_PATH, then ./.env)",
				EnvVars: []string{"ENV_FILE_PATH"},
			},
		},
		Before: func(c *cli.Context) error {
			// init writes the configuration it would otherwise need to load
			if c.Args().First() == commands.InitCommandName {
				return nil
			}

			application, err := app.New(c.Context, c.String("env-file"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			c.App.Metadata = map[string]interface{}{
				"app": application,
			}

			return nil
		},
		After: func(c *cli.Context) error {
			if application, ok := c.App.Metadata["app"].(*app.App); ok {
				return application.Shutdown()
			}
			return nil
		},
		Commands: []*cli.Command{
			commands.ServeCommand(),
			commands.ReviewsCommand(),
			commands.MigrateCommand(),
			commands.InitCommand(),
		},
		Action: commands.Serve,
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
