package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/markpro/adapter/cli"
	"github.com/felixgeelhaar/markpro/internal/app"
	mcpinternal "github.com/felixgeelhaar/markpro/internal/mcp"
	"github.com/felixgeelhaar/markpro/pkg/config"
	"github.com/felixgeelhaar/markpro/pkg/observability"
	"github.com/spf13/cobra"
)

var container *app.Container

// SetContainer shares an already-built container with the serve command.
func SetContainer(c *app.Container) {
	container = c
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c := container
		if c == nil {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
			logCfg.Output = cmd.ErrOrStderr()
			logCfg.ServiceVersion = cli.Version

			c, err = app.NewContainer(ctx, cfg, observability.NewLogger(logCfg))
			if err != nil {
				return err
			}
			defer c.Close()

			c.LicenseService.Restore(ctx)
		}

		err := mcpinternal.Serve(ctx, c.Config, cli.Version, mcpinternal.NewToolDependencies(c), c.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
