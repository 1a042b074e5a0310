// Package grpc exposes the standard gRPC health service so orchestrators can
// probe the bookmarks server without going through HTTP.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported alongside the overall ("") status.
const ServiceName = "bookmarks.v1.API"

type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server
	check   func(context.Context) error
}

// NewHealthServer reports SERVING while check succeeds. A nil check always
// reports SERVING.
func NewHealthServer(a string, l logging.Logger, check func(context.Context) error) *HealthServer {
	return &HealthServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		health:  health.NewServer(),
		check:   check,
	}
}

func (s *HealthServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.RunListener(ctx, listen)
}

func (s *HealthServer) RunListener(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.checkInterceptor),
	)
	healthpb.RegisterHealthServer(srv, s.health)

	s.setStatus(healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.WithoutCancel(ctx), "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}

func (s *HealthServer) setStatus(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}
