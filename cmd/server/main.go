package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RoGogDBD/social-pulse/internal/config"
	"github.com/RoGogDBD/social-pulse/internal/version"
	"go.uber.org/zap"
)

func main() {
	version.PrintBuildInfo()
	if err := run(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("session created",
		zap.String("session_id", a.session.ID()),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Int("capacity", cfg.Capacity),
	)
	return a.run(ctx)
}
