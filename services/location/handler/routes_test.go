package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	jwtpkg "github.com/piresc/fleetwatch/internal/pkg/jwt"
	"github.com/piresc/fleetwatch/internal/pkg/middleware"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/pkg/websocket"
	"github.com/piresc/fleetwatch/services/location/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routesSecret = "routes-secret"

func routesConfig(keys ...string) *models.Config {
	return &models.Config{
		JWT:      models.JWTConfig{Secret: routesSecret},
		Internal: models.InternalConfig{APIKeys: keys},
		Geocoder: models.GeocoderConfig{Timeout: 5 * time.Second, MaxRetries: 2},
	}
}

func TestRegisterRoutes(t *testing.T) {
	token, err := jwtpkg.GenerateToken("agent-1", "operator", "", routesSecret, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name       string
		keys       []string
		method     string
		target     string
		headers    map[string]string
		mockSetup  func(*mocks.MockLocationUC)
		wantStatus int
	}{
		{
			name:       "fleet requires a token",
			keys:       []string{"k"},
			method:     http.MethodGet,
			target:     "/v1/fleet",
			mockSetup:  func(*mocks.MockLocationUC) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "fleet with token",
			keys:    []string{"k"},
			method:  http.MethodGet,
			target:  "/v1/fleet?status=active",
			headers: map[string]string{echo.HeaderAuthorization: "Bearer " + token},
			mockSetup: func(uc *mocks.MockLocationUC) {
				uc.EXPECT().QueryFleet(gomock.Any(), models.ActiveOnly()).Return(models.FleetView{})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "internal requires a key",
			keys:       []string{"k"},
			method:     http.MethodDelete,
			target:     "/internal/agents/agent-1",
			mockSetup:  func(*mocks.MockLocationUC) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "internal with key",
			keys:    []string{"k"},
			method:  http.MethodDelete,
			target:  "/internal/agents/agent-1",
			headers: map[string]string{middleware.APIKeyHeader: "k"},
			mockSetup: func(uc *mocks.MockLocationUC) {
				uc.EXPECT().RemoveAgent(gomock.Any(), "agent-1").Return(true)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "internal disabled without keys",
			method:     http.MethodDelete,
			target:     "/internal/agents/agent-1",
			headers:    map[string]string{middleware.APIKeyHeader: "k"},
			mockSetup:  func(*mocks.MockLocationUC) {},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			uc := mocks.NewMockLocationUC(ctrl)
			tt.mockSetup(uc)

			h := NewHTTPHandler(uc, nil, nil, websocket.NewManager(), routesConfig(tt.keys...))
			e := echo.New()
			h.RegisterRoutes(e)

			req := httptest.NewRequest(tt.method, tt.target, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRegisterRoutes_WithoutJWTSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := routesConfig("k")
	cfg.JWT.Secret = ""
	h := NewHTTPHandler(mocks.NewMockLocationUC(ctrl), nil, nil, websocket.NewManager(), cfg)
	e := echo.New()
	h.RegisterRoutes(e)

	token, err := jwtpkg.GenerateToken("agent-1", "operator", "", routesSecret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/fleet", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitNATSConsumers_WithoutNATS(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewHTTPHandler(mocks.NewMockLocationUC(ctrl), nil, nil, websocket.NewManager(), routesConfig())
	assert.NoError(t, h.InitNATSConsumers())
	assert.NotPanics(t, h.Close)
}

func TestReportTimeout(t *testing.T) {
	assert.Equal(t, 20*time.Second, reportTimeout(routesConfig()))
}
