package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Adda-Baaj/boticord-go/internal/app"
	"github.com/Adda-Baaj/boticord-go/internal/config"
	"github.com/Adda-Baaj/boticord-go/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "statsposter start failed: %v\n", err)
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

	logger.InfoObj("statsposter starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poster, err := app.NewPoster(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize poster", "error", err)
		return err
	}

	if err := poster.Run(ctx); err != nil {
		return fmt.Errorf("poster run: %w", err)
	}

	return nil
}
