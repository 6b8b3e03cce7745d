// Package grpc serves the standard gRPC health protocol next to the HTTP API
// so orchestrators can check the process without speaking REST.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/lentik/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported next to the overall ("") status.
const ServiceName = "lentik.Server"

// Pinger reports whether a backing dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type GRPCServer struct {
	address  string
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger
}

// NewGRPCServer builds a health server on address. When pinger is non-nil
// the status follows it, checked every interval.
func NewGRPCServer(address string, pinger Pinger, interval time.Duration, l logging.Logger) *GRPCServer {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &GRPCServer{
		address:  address,
		health:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		logger:   l.With("module", "grpc_server"),
	}
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)
	return s.Serve(ctx, listen)
}

// Serve serves health checks on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.setStatus(healthpb.HealthCheckResponse_SERVING)

	if s.pinger != nil {
		go s.watch(ctx)
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.Shutdown()
		srv.GracefulStop()
	}()

	// starts accepting incoming connections
	return srv.Serve(lis)
}

// Shutdown reports NOT_SERVING from now on. Watchers see the change before
// the listener closes.
func (s *GRPCServer) Shutdown() {
	s.health.Shutdown()
}

func (s *GRPCServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// watch follows the pinger until ctx is done.
func (s *GRPCServer) watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		pctx, cancel := context.WithTimeout(ctx, s.interval)
		err := s.pinger.PingContext(pctx)
		cancel()

		switch {
		case err != nil && healthy:
			s.logger.Warn(ctx, "dependency unreachable", "error", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
			healthy = false
		case err == nil && !healthy:
			s.logger.Info(ctx, "dependency reachable again")
			s.setStatus(healthpb.HealthCheckResponse_SERVING)
			healthy = true
		}
	}
}
