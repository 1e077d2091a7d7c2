package location

import (
	"context"

	"github.com/piresc/fleetwatch/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks -source=usecase.go

// LocationUC defines the interface for location business logic
type LocationUC interface {
	// ReportLocation resolves and stores an agent's self-reported location
	ReportLocation(ctx context.Context, req models.ReportRequest) (models.ReportResult, error)
	// QueryFleet builds a fleet view from the latest sweep-cached statuses
	QueryFleet(ctx context.Context, filter models.Filter) models.FleetView
	GetLocation(ctx context.Context, agentID string) (models.LocationRecord, bool)
	RemoveAgent(ctx context.Context, agentID string) bool
}
