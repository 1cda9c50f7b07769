package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/probehq/apiprobe/internal/app"
	"github.com/probehq/apiprobe/internal/config"
	"github.com/probehq/apiprobe/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiprobe failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("apiprobe starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	harness, err := app.NewHarness(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize harness", "error", err)
		return err
	}

	if err := harness.Run(ctx); err != nil {
		return fmt.Errorf("harness run: %w", err)
	}

	return nil
}
