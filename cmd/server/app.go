package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/RoGogDBD/social-pulse/internal/agent"
	"github.com/RoGogDBD/social-pulse/internal/config"
	"github.com/RoGogDBD/social-pulse/internal/config/db"
	"github.com/RoGogDBD/social-pulse/internal/grpcserver"
	"github.com/RoGogDBD/social-pulse/internal/handler"
	models "github.com/RoGogDBD/social-pulse/internal/model"
	"github.com/RoGogDBD/social-pulse/internal/repository"
	"github.com/RoGogDBD/social-pulse/internal/service"
	"github.com/RoGogDBD/social-pulse/internal/simulator"
	"github.com/RoGogDBD/social-pulse/internal/stream"
	"github.com/RoGogDBD/social-pulse/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// sinkBuffer — размер очереди снимков для медленных приёмников.
const sinkBuffer = 32

const shutdownTimeout = 10 * time.Second

type app struct {
	cfg    *config.Config
	logger *zap.Logger

	session     *simulator.Session
	storage     *repository.MemStorage
	broadcaster *repository.Broadcaster
	hub         *stream.Hub
	exporter    *telemetry.Exporter
	router      http.Handler

	archive     *repository.Postgres
	redisClient *redis.Client
	cache       *repository.RedisCache
	grpc        *grpcserver.Server
	reporter    *agent.Reporter
	sinks       []*repository.AsyncObserver
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{
		cfg:         cfg,
		logger:      logger,
		storage:     repository.NewMemStorage(),
		broadcaster: repository.NewBroadcaster(logger),
		hub:         stream.NewHub(logger),
		exporter:    telemetry.NewExporter(),
	}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.broadcaster.Attach(a.storage)
	a.broadcaster.Attach(a.exporter)
	a.broadcaster.Attach(a.hub)

	if cfg.DatabaseDSN != "" {
		pool, err := db.InitDB(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		a.archive = repository.NewPostgres(pool)
		a.attachAsync("postgres", a.archive)
	} else {
		logger.Info("no DSN provided, history archive disabled")
	}

	if cfg.RedisAddr != "" {
		client, err := repository.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.redisClient = client
		a.cache = repository.NewRedisCache(client, 0)
		a.attachAsync("redis", a.cache)
	}

	if cfg.StoreFile != "" {
		a.attachAsync("file", repository.NewFileStore(cfg.StoreFile))
	}

	if cfg.AuditFile != "" {
		obs, err := repository.NewFileAuditObserver(cfg.AuditFile)
		if err != nil {
			return nil, err
		}
		a.attachAsync("audit-file", obs)
	}
	if cfg.AuditURL != "" {
		a.attachAsync("audit-http", repository.NewHTTPAuditObserver(cfg.AuditURL))
	}

	if cfg.GRPCAddress != "" {
		subnet, err := cfg.TrustedNet()
		if err != nil {
			return nil, err
		}
		a.grpc = grpcserver.NewServer(subnet, logger)
		a.broadcaster.Attach(a.grpc)
	}

	opts := []simulator.Option{
		simulator.WithNotifier(a.broadcaster),
		simulator.WithLogger(logger),
	}
	if cfg.Seed != 0 {
		opts = append(opts, simulator.WithSeed(cfg.Seed))
	}
	if cfg.Restore {
		if saved, ok := a.loadSaved(ctx); ok {
			opts = append(opts, simulator.WithRestore(saved))
		}
	}

	a.session, err = simulator.NewSession(cfg.SessionConfig(), opts...)
	if err != nil {
		return nil, err
	}

	if cfg.CollectorAddr != "" {
		a.reporter = agent.NewReporter(a.storage, agent.NewRestySender(cfg.CollectorAddr, cfg.Key), cfg.ReportInterval, logger)
	}

	h := handler.NewHandler(a.storage, nil)
	if a.archive != nil {
		h = handler.NewHandler(a.storage, a.archive)
	}
	h.SetKey(cfg.Key)
	h.SetLogger(logger)
	h.SetSession(a.session)

	a.router = service.NewRouter(h, service.Options{
		Stream:     a.hub,
		Metrics:    a.exporter.Handler(),
		Instrument: a.exporter.Middleware,
		RateLimit:  cfg.RateLimit,
	}, logger)

	// начальное состояние доступно до первого тика
	a.broadcaster.Notify(a.session.Snapshot())
	return a, nil
}

func (a *app) attachAsync(name string, obs models.SnapshotObserver) {
	sink := repository.NewAsyncObserver(name, obs, sinkBuffer, a.logger)
	a.sinks = append(a.sinks, sink)
	a.broadcaster.Attach(sink)
}

// loadSaved ищет сохранённый снимок сначала в Redis, затем в файле.
func (a *app) loadSaved(ctx context.Context) (models.Snapshot, bool) {
	if a.cache != nil {
		snap, err := a.cache.LoadSnapshot(ctx)
		if err == nil {
			a.logger.Info("restored snapshot from redis", zap.Int64("tick", snap.Tick))
			return snap, true
		}
		if !errors.Is(err, repository.ErrNoSnapshot) {
			a.logger.Warn("failed to restore snapshot from redis", zap.Error(err))
		}
	}

	if a.cfg.StoreFile == "" {
		return models.Snapshot{}, false
	}
	snap, err := repository.LoadSnapshotFromFile(a.cfg.StoreFile)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("failed to restore snapshot from file", zap.Error(err))
		}
		return models.Snapshot{}, false
	}
	a.logger.Info("restored snapshot from file",
		zap.String("path", a.cfg.StoreFile),
		zap.Int64("tick", snap.Tick),
	)
	return snap, true
}

// run запускает тики и все серверы; возвращается после отмены ctx и корректной остановки.
func (a *app) run(ctx context.Context) error {
	httpLis, err := net.Listen("tcp", a.cfg.Address.String())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.Address.String(), err)
	}
	return a.serve(ctx, httpLis)
}

func (a *app) serve(ctx context.Context, httpLis net.Listener) error {
	var grpcLis net.Listener
	if a.grpc != nil {
		lis, err := net.Listen("tcp", a.cfg.GRPCAddress)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("failed to listen on %s: %w", a.cfg.GRPCAddress, err)
		}
		grpcLis = lis
	}

	if err := a.session.Start(); err != nil {
		_ = httpLis.Close()
		if grpcLis != nil {
			_ = grpcLis.Close()
		}
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{Handler: a.router, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		a.logger.Info("http server listening", zap.String("address", httpLis.Addr().String()))
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if grpcLis != nil {
		g.Go(func() error { return a.grpc.Serve(grpcLis) })
		g.Go(func() error {
			<-ctx.Done()
			a.grpc.Stop()
			return nil
		})
	}

	if a.reporter != nil {
		g.Go(func() error { return a.reporter.Run(ctx) })
	}

	err := g.Wait()
	a.shutdown()
	return err
}

// shutdown останавливает тики, дожидается приёмников и сохраняет последний снимок.
func (a *app) shutdown() {
	a.session.Stop()
	final := a.session.Snapshot()
	if a.reporter != nil {
		a.reporter.Flush()
	}

	for _, sink := range a.sinks {
		sink.Close()
	}
	a.sinks = nil

	if a.cfg.StoreFile != "" {
		if err := repository.SaveSnapshotToFile(final, a.cfg.StoreFile); err != nil {
			a.logger.Error("failed to save snapshot", zap.Error(err))
		}
	}
	if a.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := a.cache.SaveSnapshot(ctx, final); err != nil {
			a.logger.Warn("failed to cache final snapshot", zap.Error(err))
		}
	}
	a.close()
	a.logger.Info("server stopped",
		zap.String("session_id", final.SessionID),
		zap.Int64("tick", final.Tick),
	)
}

func (a *app) close() {
	for _, sink := range a.sinks {
		sink.Close()
	}
	a.sinks = nil
	if a.archive != nil {
		a.archive.Close()
		a.archive = nil
	}
	if a.redisClient != nil {
		_ = a.redisClient.Close()
		a.redisClient = nil
	}
}
