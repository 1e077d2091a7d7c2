package handler

import (
	"context"
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/middleware"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/pkg/websocket"
	"github.com/piresc/fleetwatch/internal/utils"
	"github.com/piresc/fleetwatch/services/location"
	"github.com/piresc/fleetwatch/services/location/aggregator"
	"github.com/piresc/fleetwatch/services/location/liveness"
)

// DashboardHandler streams fleet views to connected dashboards
type DashboardHandler struct {
	locationUC location.LocationUC
	manager    *websocket.Manager
}

// NewDashboardHandler creates a new dashboard websocket handler
func NewDashboardHandler(locationUC location.LocationUC, manager *websocket.Manager) *DashboardHandler {
	return &DashboardHandler{
		locationUC: locationUC,
		manager:    manager,
	}
}

// HandleDashboard upgrades the request and pushes the view for the status
// and role query parameters. The dashboard may send a DashboardCommand to
// switch filters.
func (h *DashboardHandler) HandleDashboard(c echo.Context) error {
	filter, err := aggregator.ParseFilter(c.QueryParam("status"), c.QueryParam("role"))
	if err != nil {
		return utils.BadRequestResponse(c, err.Error())
	}

	agentID, _, _ := middleware.AgentFromContext(c)
	client, err := h.manager.Upgrade(c, agentID, filter)
	if err != nil {
		// the upgrader has already answered the request
		logger.Warn("Dashboard upgrade failed", logger.Err(err))
		return nil
	}

	ctx := c.Request().Context()
	h.push(ctx, client, nil)
	h.manager.ReadLoop(client, func(client *websocket.Client, msg []byte) {
		h.handleCommand(ctx, client, msg)
	})
	return nil
}

func (h *DashboardHandler) handleCommand(ctx context.Context, client *websocket.Client, msg []byte) {
	var cmd models.DashboardCommand
	if err := json.Unmarshal(msg, &cmd); err != nil {
		_ = h.manager.SendErrorMessage(client, constants.WSErrInvalidMessage, "message must be a JSON object")
		return
	}

	filter, err := aggregator.ParseFilter(cmd.Status, cmd.Role)
	if err != nil {
		_ = h.manager.SendErrorMessage(client, constants.WSErrInvalidFilter, err.Error())
		return
	}

	client.SetFilter(filter)
	h.push(ctx, client, nil)
}

// Broadcast pushes a fresh view to every dashboard. It runs after each
// liveness sweep; views are computed once per distinct filter.
func (h *DashboardHandler) Broadcast(ctx context.Context, _ liveness.PassResult) {
	views := make(map[models.Filter]models.FleetView)
	for _, client := range h.manager.Clients() {
		h.push(ctx, client, views)
	}
}

func (h *DashboardHandler) push(ctx context.Context, client *websocket.Client, views map[models.Filter]models.FleetView) {
	filter := client.Filter()
	view, ok := views[filter]
	if !ok {
		view = h.locationUC.QueryFleet(ctx, filter)
		if views != nil {
			views[filter] = view
		}
	}

	if err := h.manager.SendMessage(client, constants.EventFleetView, view); err != nil {
		logger.Debug("Dropped fleet view for dashboard",
			logger.String("client_id", client.ID),
			logger.Err(err))
	}
}
