package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoGogDBD/social-pulse/internal/agent"
	"github.com/RoGogDBD/social-pulse/internal/config"
	"github.com/RoGogDBD/social-pulse/internal/repository"
	"github.com/RoGogDBD/social-pulse/internal/simulator"
	"go.uber.org/zap"
)

// ErrNoCollector возвращается, если адрес коллектора не задан.
var ErrNoCollector = errors.New("collector address is required")

// headless — симулятор без HTTP-интерфейса, только тики и отчёты коллектору.
type headless struct {
	session  *simulator.Session
	storage  *repository.MemStorage
	reporter *agent.Reporter
	audit    *repository.AsyncObserver
	logger   *zap.Logger
}

func newHeadless(cfg *config.Config, sender agent.MetricsSender, logger *zap.Logger) (*headless, error) {
	if sender == nil {
		if cfg.CollectorAddr == "" {
			return nil, ErrNoCollector
		}
		sender = agent.NewRestySender(cfg.CollectorAddr, cfg.Key)
	}

	h := &headless{
		storage: repository.NewMemStorage(),
		logger:  logger,
	}
	b := repository.NewBroadcaster(logger)
	b.Attach(h.storage)

	if cfg.AuditFile != "" {
		obs, err := repository.NewFileAuditObserver(cfg.AuditFile)
		if err != nil {
			return nil, err
		}
		h.audit = repository.NewAsyncObserver("audit-file", obs, 32, logger)
		b.Attach(h.audit)
	}

	opts := []simulator.Option{
		simulator.WithNotifier(b),
		simulator.WithLogger(logger),
	}
	if cfg.Seed != 0 {
		opts = append(opts, simulator.WithSeed(cfg.Seed))
	}
	session, err := simulator.NewSession(cfg.SessionConfig(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	h.session = session
	h.storage.Save(session.Snapshot())
	h.reporter = agent.NewReporter(h.storage, sender, cfg.ReportInterval, logger)
	return h, nil
}

// run тикает и отправляет отчёты до отмены ctx.
func (h *headless) run(ctx context.Context) error {
	if err := h.session.Start(); err != nil {
		return err
	}
	err := h.reporter.Run(ctx)

	h.session.Stop()
	h.reporter.Flush()
	if h.audit != nil {
		h.audit.Close()
	}
	return err
}
