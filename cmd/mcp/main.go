package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/markpro/adapter/cli"
	"github.com/felixgeelhaar/markpro/internal/app"
	mcpinternal "github.com/felixgeelhaar/markpro/internal/mcp"
	"github.com/felixgeelhaar/markpro/pkg/config"
	"github.com/felixgeelhaar/markpro/pkg/observability"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCfg := observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	logCfg.Output = os.Stdout
	logCfg.ServiceName = mcpinternal.ServerName
	logCfg.ServiceVersion = cli.Version
	logger := observability.NewLogger(logCfg)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	container.LicenseService.Restore(ctx)

	if err := mcpinternal.Serve(ctx, cfg, cli.Version, mcpinternal.NewToolDependencies(container), logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
