package http

import (
	"context"

	"opsanalytics/internal/services"
	"opsanalytics/pkg/contracts/domain"
)

// OccupancyServiceInterface defines the occupancy operations used by the API
type OccupancyServiceInterface interface {
	Expand(ctx context.Context, bookings []domain.Booking, policy string) (*services.ExpandResult, error)
	DefaultPolicy() string
}

// PickingServiceInterface defines the picking operations used by the API
type PickingServiceInterface interface {
	Analyse(ctx context.Context, events []domain.PickEvent) (*domain.PickingReport, error)
}

// HealthServiceInterface defines the health operations used by the API
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
