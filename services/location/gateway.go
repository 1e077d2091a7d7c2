package location

import (
	"context"

	"github.com/piresc/fleetwatch/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks -source=gateway.go

// LocationGW defines the interface for outbound location events
type LocationGW interface {
	// PublishLocationUpdated publishes an applied report
	PublishLocationUpdated(ctx context.Context, event models.LocationUpdatedEvent) error
}

// Geocoder translates between free-text addresses and coordinates.
// Failures are ErrInvalidInput, ErrNotFound or ErrUnavailable.
type Geocoder interface {
	Forward(ctx context.Context, address string) (models.GeocodeResult, error)
	Reverse(ctx context.Context, lat, lng float64) (string, error)
}
