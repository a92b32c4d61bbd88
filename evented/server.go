package evented

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// RegisterFunc registers gRPC services on a server.
type RegisterFunc func(*grpc.Server)

// ServerConfig configures a gRPC server.
type ServerConfig struct {
	Domain string
	Port   int
}

// NewServer creates a gRPC server with the health service marked SERVING.
func NewServer(register RegisterFunc) *grpc.Server {
	s := grpc.NewServer()
	register(s)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return s
}

// RunServer starts a gRPC server with health checks on cfg.Port.
//
// Blocks until the server exits or ctx is cancelled, in which case the
// server is stopped gracefully.
func RunServer(ctx context.Context, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Port, err)
	}
	return Serve(ctx, lis, cfg, logger, register)
}

// Serve runs a gRPC server on an existing listener.
func Serve(ctx context.Context, lis net.Listener, cfg ServerConfig, logger *zap.Logger, register RegisterFunc) error {
	s := NewServer(register)

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("grpc server stopping", zap.String("domain", cfg.Domain))
			s.GracefulStop()
		case <-stopped:
		}
	}()
	defer close(stopped)

	logger.Info("grpc server started",
		zap.String("domain", cfg.Domain),
		zap.String("addr", lis.Addr().String()),
	)

	if err := s.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}
