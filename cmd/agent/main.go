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
		log.Fatalf("agent failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load("agent", os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := config.Initialize(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	h, err := newHeadless(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger.Info("agent started",
		zap.String("session_id", h.session.ID()),
		zap.String("collector", cfg.CollectorAddr),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Duration("report_interval", cfg.ReportInterval),
	)
	return h.run(ctx)
}
