package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/probehq/apiprobe/internal/config"
	"github.com/probehq/apiprobe/internal/logger"
	"github.com/probehq/apiprobe/internal/mockapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mockposts failed: %v\n", err)
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

	srv, err := mockapi.NewService(log).Listen(cfg.MockAddr)
	if err != nil {
		return fmt.Errorf("start mock api: %w", err)
	}

	logger.InfoObj("mockposts serving", "base_url", srv.BaseURL())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	return srv.Close()
}
