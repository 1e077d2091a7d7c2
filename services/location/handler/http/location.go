package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/middleware"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/utils"
	"github.com/piresc/fleetwatch/services/location"
	"github.com/piresc/fleetwatch/services/location/aggregator"
)

// LocationHandler handles HTTP requests for location operations
type LocationHandler struct {
	locationUC location.LocationUC
}

// NewLocationHandler creates a new location HTTP handler
func NewLocationHandler(locationUC location.LocationUC) *LocationHandler {
	return &LocationHandler{
		locationUC: locationUC,
	}
}

// selfReport is the body of POST /v1/me/location
type selfReport struct {
	DisplayName string              `json:"display_name"`
	Address     string              `json:"address"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

// agentReport is the body of POST /internal/agents/:id/location
type agentReport struct {
	Role        models.Role         `json:"role"`
	DisplayName string              `json:"display_name"`
	Address     string              `json:"address"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

// ReportSelf stores the location of the authenticated agent
func (h *LocationHandler) ReportSelf(c echo.Context) error {
	agentID, role, name := middleware.AgentFromContext(c)
	if agentID == "" {
		return utils.UnauthorizedResponse(c, "")
	}

	var req selfReport
	if err := c.Bind(&req); err != nil {
		logger.WarnCtx(c.Request().Context(), "Failed to bind request", logger.Err(err))
		return utils.BadRequestResponse(c, "invalid request body")
	}
	if req.DisplayName == "" {
		req.DisplayName = name
	}

	return h.report(c, models.ReportRequest{
		AgentID:     agentID,
		Role:        models.Role(role),
		DisplayName: req.DisplayName,
		Address:     req.Address,
		Coordinates: req.Coordinates,
	})
}

// ReportAgent stores a location on behalf of another service
func (h *LocationHandler) ReportAgent(c echo.Context) error {
	agentID := strings.TrimSpace(c.Param("id"))
	if agentID == "" {
		return utils.BadRequestResponse(c, "agent id is required")
	}

	var req agentReport
	if err := c.Bind(&req); err != nil {
		logger.WarnCtx(c.Request().Context(), "Failed to bind request", logger.Err(err))
		return utils.BadRequestResponse(c, "invalid request body")
	}

	return h.report(c, models.ReportRequest{
		AgentID:     agentID,
		Role:        req.Role,
		DisplayName: req.DisplayName,
		Address:     req.Address,
		Coordinates: req.Coordinates,
	})
}

func (h *LocationHandler) report(c echo.Context, req models.ReportRequest) error {
	result, err := h.locationUC.ReportLocation(c.Request().Context(), req)
	if err != nil {
		return errorResponse(c, err)
	}
	if !result.Applied {
		return utils.SuccessResponse(c, http.StatusOK, "A newer location is already stored", result)
	}
	return utils.SuccessResponse(c, http.StatusOK, "Location updated", result)
}

// GetFleet returns the fleet view for the status and role query parameters
func (h *LocationHandler) GetFleet(c echo.Context) error {
	filter, err := aggregator.ParseFilter(c.QueryParam("status"), c.QueryParam("role"))
	if err != nil {
		return errorResponse(c, err)
	}

	view := h.locationUC.QueryFleet(c.Request().Context(), filter)
	return utils.SuccessResponse(c, http.StatusOK, "Fleet retrieved", view)
}

// GetAgentLocation returns a single agent's current location
func (h *LocationHandler) GetAgentLocation(c echo.Context) error {
	agentID := strings.TrimSpace(c.Param("id"))
	if agentID == "" {
		return utils.BadRequestResponse(c, "agent id is required")
	}

	rec, ok := h.locationUC.GetLocation(c.Request().Context(), agentID)
	if !ok {
		return utils.NotFoundResponse(c, "agent location not found")
	}
	return utils.SuccessResponse(c, http.StatusOK, "Agent location retrieved", rec)
}

// RemoveAgent deregisters an agent from tracking
func (h *LocationHandler) RemoveAgent(c echo.Context) error {
	agentID := strings.TrimSpace(c.Param("id"))
	if agentID == "" {
		return utils.BadRequestResponse(c, "agent id is required")
	}

	if !h.locationUC.RemoveAgent(c.Request().Context(), agentID) {
		return utils.NotFoundResponse(c, "agent not tracked")
	}
	return utils.SuccessResponse(c, http.StatusOK, "Agent removed", map[string]string{"agent_id": agentID})
}

// errorResponse maps use case errors onto HTTP statuses
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, location.ErrInvalidInput):
		return utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, location.ErrNotFound):
		return utils.NotFoundResponse(c, location.ErrNotFound.Error())
	case errors.Is(err, location.ErrUnavailable):
		return utils.ServiceUnavailableResponse(c, "geocoding is temporarily unavailable")
	default:
		logger.ErrorCtx(c.Request().Context(), "Location request failed",
			logger.String("path", c.Path()),
			logger.Err(err))
		return utils.InternalServerErrorResponse(c, "")
	}
}
