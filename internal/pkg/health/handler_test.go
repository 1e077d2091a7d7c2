package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/piresc/fleetwatch/internal/pkg/circuitbreaker"
	"github.com/piresc/fleetwatch/internal/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPingHandler(t *testing.T) {
	t.Setenv("GIT_COMMIT", "abc123")

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/ping", nil), rec)

	require.NoError(t, NewPingHandler("location-service", "1.2.3")(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var info BuildInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "location-service", info.ServiceName)
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.GitCommit)
	assert.NotEmpty(t, info.GoVersion)
	assert.False(t, info.ServerTime.IsZero())
}

func TestCheckAllHealth(t *testing.T) {
	failing := CheckerFunc(func(context.Context) error { return errors.New("down") })
	passing := CheckerFunc(func(context.Context) error { return nil })

	tests := []struct {
		name       string
		setup      func(*HealthService)
		wantStatus string
	}{
		{
			name:       "no dependencies",
			setup:      func(*HealthService) {},
			wantStatus: StatusHealthy,
		},
		{
			name: "all passing",
			setup: func(h *HealthService) {
				h.AddChecker("nats", passing, true)
				h.AddChecker("redis", passing, false)
			},
			wantStatus: StatusHealthy,
		},
		{
			name: "optional failure degrades",
			setup: func(h *HealthService) {
				h.AddChecker("nats", passing, true)
				h.AddChecker("redis", failing, false)
			},
			wantStatus: StatusDegraded,
		},
		{
			name: "critical failure is unhealthy",
			setup: func(h *HealthService) {
				h.AddChecker("nats", failing, true)
				h.AddChecker("redis", failing, false)
			},
			wantStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthService()
			tt.setup(h)

			resp := h.CheckAllHealth(context.Background())
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}
}

func TestRedisHealthChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := database.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer client.Close()

	checker := NewRedisHealthChecker(client)
	assert.NoError(t, checker.CheckHealth(context.Background()))

	mr.Close()
	assert.Error(t, checker.CheckHealth(context.Background()))

	assert.NoError(t, NewRedisHealthChecker(nil).CheckHealth(context.Background()))
}

func TestNATSHealthChecker_Nil(t *testing.T) {
	assert.NoError(t, NewNATSHealthChecker(nil).CheckHealth(context.Background()))
}

func TestBreakerHealthChecker(t *testing.T) {
	state := circuitbreaker.StateClosed
	checker := NewBreakerHealthChecker(func() circuitbreaker.State { return state })

	assert.NoError(t, checker.CheckHealth(context.Background()))
	state = circuitbreaker.StateHalfOpen
	assert.NoError(t, checker.CheckHealth(context.Background()))
	state = circuitbreaker.StateOpen
	assert.Error(t, checker.CheckHealth(context.Background()))
}

func TestRegisterHealthEndpoints(t *testing.T) {
	h := NewHealthService()
	h.AddChecker("geocoder", CheckerFunc(func(context.Context) error { return errors.New("circuit open") }), false)

	e := echo.New()
	RegisterHealthEndpoints(e, "location-service", "1.0.0", h)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/health", wantStatus: http.StatusOK, wantBody: "OK"},
		{path: "/healthz", wantStatus: http.StatusOK, wantBody: "OK"},
		{path: "/ready", wantStatus: http.StatusOK, wantBody: `"ready"`},
		{path: "/health/detailed", wantStatus: http.StatusOK, wantBody: `"degraded"`},
		{path: "/ping", wantStatus: http.StatusOK, wantBody: `"location-service"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestReadyFailsOnCriticalDependency(t *testing.T) {
	h := NewHealthService()
	h.AddChecker("nats", CheckerFunc(func(context.Context) error { return errors.New("down") }), true)

	e := echo.New()
	RegisterHealthEndpoints(e, "location-service", "1.0.0", h)

	for _, path := range []string{"/ready", "/health/detailed"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}
