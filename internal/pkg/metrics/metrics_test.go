package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSweep(t *testing.T) {
	ObserveSweep(15*time.Millisecond, 7, 3)

	assert.Equal(t, 7.0, testutil.ToFloat64(Agents.WithLabelValues("active")))
	assert.Equal(t, 3.0, testutil.ToFloat64(Agents.WithLabelValues("inactive")))
	assert.GreaterOrEqual(t, testutil.CollectAndCount(SweepDuration), 1)
}

func TestReportsCounter(t *testing.T) {
	before := testutil.ToFloat64(Reports.WithLabelValues(ReportStale))
	Reports.WithLabelValues(ReportStale).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Reports.WithLabelValues(ReportStale)))
}

func TestHandler(t *testing.T) {
	DashboardClients.Set(2)

	e := echo.New()
	e.GET("/metrics", Handler())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fleetwatch_dashboard_clients 2")
	assert.Contains(t, rec.Body.String(), "fleetwatch_sweep_duration_seconds")
}
