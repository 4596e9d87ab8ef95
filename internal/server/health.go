package server

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/cutmatch/cutmatch-api/internal/app"
)

// ServiceName is the name reported to gRPC health clients next to "".
const ServiceName = "cutmatch.api"

// HealthRegistrar exposes the standard gRPC health service and keeps its
// status in line with database and Redis reachability.
type HealthRegistrar struct {
	appCtx *app.AppContext
	health *health.Server
}

// NewHealthRegistrar creates a registrar that starts out NOT_SERVING.
func NewHealthRegistrar(appCtx *app.AppContext) *HealthRegistrar {
	h := &HealthRegistrar{appCtx: appCtx, health: health.NewServer()}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service to the gRPC server
func (h *HealthRegistrar) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Check pings the database and Redis.
func (h *HealthRegistrar) Check(ctx context.Context) error {
	sqlDB, err := h.appCtx.DB.DB()
	if err != nil {
		return fmt.Errorf("db handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := h.appCtx.RedisCache.Ping(ctx); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Probe runs Check once and publishes the result.
func (h *HealthRegistrar) Probe(ctx context.Context) error {
	err := h.Check(ctx)
	if err != nil {
		h.appCtx.Logger.Warn("health probe failed", "err", err)
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	h.set(healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Watch probes every interval until ctx is done, then marks the service
// as shutting down.
func (h *HealthRegistrar) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		_ = h.Probe(probeCtx)
		cancel()

		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
		}
	}
}

func (h *HealthRegistrar) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}
