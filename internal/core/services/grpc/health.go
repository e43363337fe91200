package grpc

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-checked service.
const ServiceName = "where.Reconciler"

// HealthObserver mirrors the reconciliation state into the gRPC health service.
// The service is NOT_SERVING while location access is denied or unavailable.
type HealthObserver struct {
	srv *health.Server

	mu   sync.Mutex
	last healthpb.HealthCheckResponse_ServingStatus
}

var _ ports.StateObserver = (*HealthObserver)(nil)

// NewHealthObserver wraps srv.
func NewHealthObserver(srv *health.Server) *HealthObserver {
	return &HealthObserver{srv: srv, last: healthpb.HealthCheckResponse_UNKNOWN}
}

func (h *HealthObserver) OnStateChanged(ctx context.Context, state domain.ViewState) {
	status := StatusFor(state)

	h.mu.Lock()
	changed := status != h.last
	h.last = status
	h.mu.Unlock()

	if !changed {
		return
	}
	h.srv.SetServingStatus(ServiceName, status)
	h.srv.SetServingStatus("", status)
	slog.Info("Health status changed", "service", ServiceName, "status", status.String(), "phase", state.Phase)
}

// StatusFor maps a state to a serving status.
func StatusFor(state domain.ViewState) healthpb.HealthCheckResponse_ServingStatus {
	switch state.ErrorKind {
	case domain.KindPermissionDenied, domain.KindLocationUnavailable:
		return healthpb.HealthCheckResponse_NOT_SERVING
	}
	return healthpb.HealthCheckResponse_SERVING
}

// NewGrpcServer creates a server exposing the health service, seeded from the
// reconciler's current state.
func NewGrpcServer(reconciler ports.Reconciler) (*grpc.Server, *HealthObserver) {
	s := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)

	observer := NewHealthObserver(hs)
	observer.OnStateChanged(context.Background(), reconciler.State())
	return s, observer
}
