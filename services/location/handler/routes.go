package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/database"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/middleware"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	natspkg "github.com/piresc/fleetwatch/internal/pkg/nats"
	"github.com/piresc/fleetwatch/internal/pkg/websocket"
	"github.com/piresc/fleetwatch/services/location"
	httpHandler "github.com/piresc/fleetwatch/services/location/handler/http"
)

// HTTPHandler combines all handlers for the location service
type HTTPHandler struct {
	locationHTTP *httpHandler.LocationHandler
	locationNATS *LocationHandler
	dashboard    *DashboardHandler
	redisClient  *database.RedisClient
	cfg          *models.Config
}

// NewHTTPHandler creates a new combined handler. natsClient and redisClient
// may be nil; NATS intake and rate limiting are then disabled.
func NewHTTPHandler(
	locationUC location.LocationUC,
	natsClient *natspkg.Client,
	redisClient *database.RedisClient,
	manager *websocket.Manager,
	cfg *models.Config,
) *HTTPHandler {
	h := &HTTPHandler{
		locationHTTP: httpHandler.NewLocationHandler(locationUC),
		dashboard:    NewDashboardHandler(locationUC, manager),
		redisClient:  redisClient,
		cfg:          cfg,
	}
	if natsClient != nil {
		h.locationNATS = NewLocationHandler(locationUC, natsClient, reportTimeout(cfg))
	}
	return h
}

// reportTimeout leaves room for every geocoder attempt of a report
func reportTimeout(cfg *models.Config) time.Duration {
	return cfg.Geocoder.Timeout * time.Duration(cfg.Geocoder.MaxRetries+2)
}

// Dashboard returns the websocket handler, whose Broadcast runs after sweeps
func (h *HTTPHandler) Dashboard() *DashboardHandler {
	return h.dashboard
}

// RegisterRoutes registers all HTTP routes
func (h *HTTPHandler) RegisterRoutes(e *echo.Echo) {
	h.registerAgentRoutes(e)
	h.registerInternalRoutes(e)
}

func (h *HTTPHandler) registerAgentRoutes(e *echo.Echo) {
	if h.cfg.JWT.Secret == "" {
		logger.Warn("No JWT_SECRET configured, agent and dashboard routes are disabled")
		return
	}
	auth := middleware.JWTAuthMiddleware(h.cfg.JWT)

	// Agent and dashboard routes (JWT required)
	v1 := e.Group("/v1", auth, middleware.AgentContextMiddleware())

	var reportMiddleware []echo.MiddlewareFunc
	if h.redisClient != nil && h.cfg.Limits.Reports > 0 {
		reportMiddleware = append(reportMiddleware,
			middleware.AgentRateLimiter(h.cfg.Limits.Reports, h.cfg.Limits.Period, h.redisClient.GetClient()))
	}
	v1.POST("/me/location", h.locationHTTP.ReportSelf, reportMiddleware...)
	v1.GET("/fleet", h.locationHTTP.GetFleet)
	v1.GET("/agents/:id/location", h.locationHTTP.GetAgentLocation)

	// Browsers cannot send headers on a websocket upgrade
	e.GET("/v1/fleet/ws", h.dashboard.HandleDashboard, middleware.QueryTokenToHeader(), auth)
}

func (h *HTTPHandler) registerInternalRoutes(e *echo.Echo) {
	// Internal routes for service-to-service communication (API key required)
	if len(h.cfg.Internal.APIKeys) == 0 {
		logger.Warn("No INTERNAL_API_KEYS configured, internal routes are disabled")
		return
	}
	internal := e.Group("/internal", middleware.ValidateAPIKey(h.cfg.Internal.APIKeys))
	internal.POST("/agents/:id/location", h.locationHTTP.ReportAgent)
	internal.DELETE("/agents/:id", h.locationHTTP.RemoveAgent)
}

// InitNATSConsumers initializes all NATS consumers
func (h *HTTPHandler) InitNATSConsumers() error {
	if h.locationNATS == nil {
		logger.Warn("NATS is not configured, report intake over NATS is disabled")
		return nil
	}
	return h.locationNATS.InitNATSConsumers()
}

// Close stops the NATS consumers and disconnects dashboards
func (h *HTTPHandler) Close() {
	if h.locationNATS != nil {
		h.locationNATS.Close()
	}
	h.dashboard.manager.Close()
}
