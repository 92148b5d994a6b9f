package grpcserver

import (
	"errors"
	"net"
	"sync/atomic"

	models "github.com/RoGogDBD/social-pulse/internal/model"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в протоколе grpc.health.v1.
const ServiceName = "socialpulse.Session"

// Server отдаёт стандартный сервис здоровья gRPC.
//
// Статус SERVING выставляется после первого тика сессии
// и сбрасывается в NOT_SERVING при остановке.
type Server struct {
	srv     *grpc.Server
	health  *health.Server
	serving atomic.Bool
	logger  *zap.Logger
}

// NewServer создаёт gRPC-сервер. trustedSubnet == nil отключает проверку IP.
func NewServer(trustedSubnet *net.IPNet, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(IPSubnetInterceptor(trustedSubnet)),
		grpc.ChainStreamInterceptor(IPSubnetStreamInterceptor(trustedSubnet)),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	s := &Server{srv: srv, health: hs, logger: logger}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// SetServing переключает статус сервиса.
func (s *Server) SetServing(serving bool) {
	if s.serving.Swap(serving) == serving {
		return
	}
	if serving {
		s.setStatus(healthpb.HealthCheckResponse_SERVING)
	} else {
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	s.logger.Info("grpc health status changed", zap.Bool("serving", serving))
}

// OnSnapshot отмечает сервис работающим после первого тика; используется как наблюдатель.
func (s *Server) OnSnapshot(snapshot models.Snapshot) error {
	if snapshot.Tick > 0 {
		s.SetServing(true)
	}
	return nil
}

// Serve обслуживает соединения до вызова Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("grpc server listening", zap.String("address", lis.Addr().String()))
	if err := s.srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop переводит сервис в NOT_SERVING и дожидается завершения активных вызовов.
func (s *Server) Stop() {
	s.serving.Store(false)
	s.health.Shutdown()
	s.srv.GracefulStop()
}
