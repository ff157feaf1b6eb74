package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/tildaslashalef/codecritic/internal/app"
	"github.com/tildaslashalef/codecritic/internal/server"
	"github.com/tildaslashalef/codecritic/internal/utils"
)

// ServeCommand returns the CLI command that runs the HTTP API
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the review HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address, overrides CODECRITIC_HTTP_ADDR",
			},
		},
		Action: Serve,
	}
}

// Serve starts the API server and blocks until SIGINT or SIGTERM
func Serve(c *cli.Context) error {
	application, err := app.FromContext(c)
	if err != nil {
		return err
	}

	cfg := application.Config
	if addr := c.String("addr"); addr != "" {
		cfg.HTTP.Addr = addr
	}

	if cfg.Database.AutoMigrate {
		if err := application.DB.RunMigrations(c.Context); err != nil {
			utils.PrintError(fmt.Sprintf("Failed to apply migrations: %s", err))
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(cfg.HTTP, application.Review, application.Logger)
	utils.PrintInfo("Listening on " + color.CyanString("%s", cfg.HTTP.Addr))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	utils.PrintSuccess("Server stopped")
	return nil
}
