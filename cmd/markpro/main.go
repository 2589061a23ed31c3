package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/markpro/adapter/cli"
	"github.com/felixgeelhaar/markpro/adapter/cli/license"
	"github.com/felixgeelhaar/markpro/adapter/cli/mcp"
	"github.com/felixgeelhaar/markpro/internal/app"
	"github.com/felixgeelhaar/markpro/pkg/config"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logCfg.ServiceVersion = cli.Version
	if !cfg.IsDevelopment() && !hasFlag("-v", "--verbose") {
		// Interactive commands only log warnings unless --verbose is set.
		logCfg.Level = observability.LogLevelWarn
	}
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Startup hook: derive the entitlement from the stored license slot.
	container.LicenseService.Restore(ctx)

	cliApp := cli.NewApp(container.ExportService, container.EditorService, cfg.UpgradeURL)
	cliApp.SetAPIServer(container.APIServer(cfg.APIAddr))
	cliApp.SetConfig(cfg)
	cli.SetApp(cliApp)

	license.SetLicenseService(container.LicenseService)
	license.SetVerifyService(container.VerifyService)
	license.SetUpgradeURL(cfg.UpgradeURL)

	// Register commands
	cli.AddCommand(license.Cmd)
	cli.AddCommand(license.UpgradeCmd)
	mcp.SetContainer(container)
	cli.AddCommand(mcp.Cmd)

	if err := cli.Run(ctx); err != nil {
		container.Close()
		os.Exit(1)
	}
}

func hasFlag(names ...string) bool {
	for _, arg := range os.Args[1:] {
		for _, name := range names {
			if arg == name {
				return true
			}
		}
	}
	return false
}
