package metrics

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report outcomes
const (
	ReportApplied = "applied"
	ReportStale   = "stale"
	ReportFailed  = "failed"
)

var (
	Reports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetwatch_location_reports_total",
		Help: "Location reports by outcome",
	}, []string{"result"})
	GeocodeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetwatch_geocode_calls_total",
		Help: "Geocoding provider calls by operation and outcome",
	}, []string{"op", "outcome"})
	GeocodeCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetwatch_geocode_cache_hits_total",
		Help: "Geocode lookups answered from the cache",
	}, []string{"op"})
	SweepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetwatch_sweep_duration_seconds",
		Help:    "Duration of a liveness sweep pass",
		Buckets: prometheus.DefBuckets,
	})
	SweepPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fleetwatch_sweep_panics_total",
		Help: "Sweep passes aborted by a panic",
	})
	Agents = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleetwatch_agents",
		Help: "Tracked agents by status after the last sweep",
	}, []string{"status"})
	DashboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fleetwatch_dashboard_clients",
		Help: "Connected fleet dashboard websockets",
	})
)

// ObserveSweep records a finished sweep pass
func ObserveSweep(d time.Duration, active, inactive int) {
	SweepDuration.Observe(d.Seconds())
	Agents.WithLabelValues("active").Set(float64(active))
	Agents.WithLabelValues("inactive").Set(float64(inactive))
}

// Handler serves the default registry on echo
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
