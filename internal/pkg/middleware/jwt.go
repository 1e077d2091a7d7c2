package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/fleetwatch/internal/pkg/jwt"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/utils"
)

// Context keys set by JWTAuthMiddleware
const (
	AgentIDKey   = "agent_id"
	AgentRoleKey = "agent_role"
	AgentNameKey = "agent_name"
)

// JWTAuthMiddleware creates a middleware for JWT authentication. The agent
// identity is trusted as issued; no user records are looked up here.
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			claims, err := jwtpkg.ValidateToken(tokenString, config.Secret)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			c.Set(AgentIDKey, claims.AgentID)
			c.Set(AgentRoleKey, claims.Role)
			c.Set(AgentNameKey, claims.DisplayName)

			return next(c)
		}
	}
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
// Browsers cannot set headers on websocket upgrades, so a token query
// parameter is accepted there by the caller instead.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

// QueryTokenToHeader copies a ?token= query parameter into the
// Authorization header when none was sent
func QueryTokenToHeader() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Header.Get(echo.HeaderAuthorization) == "" {
				if token := c.QueryParam("token"); token != "" {
					req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
				}
			}
			return next(c)
		}
	}
}

// AgentFromContext returns the identity set by JWTAuthMiddleware
func AgentFromContext(c echo.Context) (agentID, role, displayName string) {
	agentID, _ = c.Get(AgentIDKey).(string)
	role, _ = c.Get(AgentRoleKey).(string)
	displayName, _ = c.Get(AgentNameKey).(string)
	return agentID, role, displayName
}
