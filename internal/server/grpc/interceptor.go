package grpc

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

func (s *HealthServer) loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	s.logger.Debug(ctx, "grpc request",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, err
}

// checkInterceptor refreshes the reported status from the dependency check
// before answering a Check call.
func (s *HealthServer) checkInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	if info.FullMethod == healthCheckMethod && s.check != nil {
		if err := s.check(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, status.Error(codes.Canceled, err.Error())
			}
			s.logger.Warn(ctx, "dependency check failed", "error", err)
			s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		} else {
			s.setStatus(healthpb.HealthCheckResponse_SERVING)
		}
	}

	return handler(ctx, req)
}
