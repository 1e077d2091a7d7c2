package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	natspkg "github.com/piresc/fleetwatch/internal/pkg/nats"
	"github.com/piresc/fleetwatch/services/location"
)

type locationGW struct {
	client *natspkg.Client
}

// NewLocationGW creates a new location gateway
func NewLocationGW(client *natspkg.Client) location.LocationGW {
	return &locationGW{
		client: client,
	}
}

// PublishLocationUpdated publishes an applied report to NATS
func (g *locationGW) PublishLocationUpdated(ctx context.Context, event models.LocationUpdatedEvent) error {
	if err := g.client.PublishJSON(constants.SubjectLocationUpdated, event); err != nil {
		return fmt.Errorf("failed to publish location update for %s: %w", event.AgentID, err)
	}
	return nil
}

// noopGW is used when NATS is not configured
type noopGW struct{}

// NewNoopLocationGW returns a gateway that drops every event
func NewNoopLocationGW() location.LocationGW {
	return noopGW{}
}

func (noopGW) PublishLocationUpdated(context.Context, models.LocationUpdatedEvent) error {
	return nil
}
