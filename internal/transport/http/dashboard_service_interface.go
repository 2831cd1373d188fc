package http

import (
	"context"

	"salesdash/internal/ledger"
	"salesdash/internal/services"
)

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	Options(ctx context.Context) (*services.OptionsResult, error)
	Timeline(ctx context.Context, spec ledger.FilterSpec) (*services.TimelineResult, error)
	Projects(ctx context.Context, spec ledger.FilterSpec) (*services.ProjectsResult, error)
	Bedrooms(ctx context.Context, spec ledger.FilterSpec) (*services.BedroomsResult, error)
	Map(ctx context.Context, spec ledger.FilterSpec) (*services.MapResult, error)
}

// HealthServiceInterface defines the interface for health checks
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}
