// Package grpc exposes the gateway's health over the standard gRPC health
// protocol for orchestrators and service meshes that probe over gRPC.
package grpc

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name of the bureau integration.
// The empty name reports the process itself.
const ServiceName = "sentinel.CreditGateway"

// DefaultRefreshInterval is how often the breaker state is sampled.
const DefaultRefreshInterval = 5 * time.Second

// BreakerProbe reports the upstream circuit breaker state.
type BreakerProbe interface {
	BreakerState() string
}

// HealthServer mirrors the upstream breaker into the gRPC health service:
// ServiceName is NOT_SERVING while the breaker is open, the process stays
// SERVING because cached answers are still available.
type HealthServer struct {
	*health.Server
	probe  BreakerProbe
	logger *slog.Logger
	last   healthpb.HealthCheckResponse_ServingStatus
}

// NewHealthServer creates a HealthServer and samples the breaker once.
func NewHealthServer(probe BreakerProbe, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HealthServer{Server: health.NewServer(), probe: probe, logger: logger}
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.Refresh()
	return h
}

// Refresh samples the breaker and updates ServiceName.
func (h *HealthServer) Refresh() {
	status := healthpb.HealthCheckResponse_SERVING
	if h.probe.BreakerState() == "open" {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	if status != h.last {
		h.logger.Info("grpc health status changed",
			slog.String("service", ServiceName),
			slog.String("status", status.String()))
		h.last = status
	}
	h.SetServingStatus(ServiceName, status)
}

// Run refreshes every interval until ctx is cancelled.
func (h *HealthServer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Refresh()
		}
	}
}

// Serve registers hs on a new gRPC server and serves lis until ctx is
// cancelled. Shutdown marks every service NOT_SERVING before stopping.
func Serve(ctx context.Context, lis net.Listener, hs *HealthServer, logger *slog.Logger) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("grpc health server starting", slog.String("addr", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		hs.Shutdown()
		srv.GracefulStop()
		logger.Info("grpc health server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}
