package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/metrics"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/utils"
	"github.com/piresc/fleetwatch/services/location"
	"github.com/piresc/fleetwatch/services/location/aggregator"
	"github.com/piresc/fleetwatch/services/location/liveness"
)

// Options tunes the use case
type Options struct {
	// ReverseOnReport labels coordinate-only reports with a reverse lookup
	ReverseOnReport bool
	// Now overrides the clock, for tests
	Now func() time.Time
}

// LocationUC implements the location.LocationUC interface
type LocationUC struct {
	repo            location.LocationRepo
	geocoder        location.Geocoder
	gw              location.LocationGW
	evaluator       *liveness.Evaluator
	aggregator      *aggregator.Aggregator
	reverseOnReport bool
	now             func() time.Time
}

// NewLocationUC creates a new location use case
func NewLocationUC(
	repo location.LocationRepo,
	geocoder location.Geocoder,
	gw location.LocationGW,
	evaluator *liveness.Evaluator,
	agg *aggregator.Aggregator,
	opts Options,
) *LocationUC {
	now := opts.Now
	if now == nil {
		now = models.Now
	}
	return &LocationUC{
		repo:            repo,
		geocoder:        geocoder,
		gw:              gw,
		evaluator:       evaluator,
		aggregator:      agg,
		reverseOnReport: opts.ReverseOnReport,
		now:             now,
	}
}

var _ location.LocationUC = (*LocationUC)(nil)

// ReportLocation resolves and stores an agent's location. The report is
// stamped when it is received, before any geocoding, so a slow report that
// finishes after a newer one is discarded as stale.
func (uc *LocationUC) ReportLocation(ctx context.Context, req models.ReportRequest) (models.ReportResult, error) {
	receivedAt := uc.now()

	if err := validateReport(&req); err != nil {
		metrics.Reports.WithLabelValues(metrics.ReportFailed).Inc()
		return models.ReportResult{}, err
	}

	coords, address, err := uc.resolve(ctx, req)
	if err != nil {
		metrics.Reports.WithLabelValues(metrics.ReportFailed).Inc()
		logger.WarnCtx(ctx, "Location report failed",
			logger.String("agent_id", req.AgentID),
			logger.Err(err))
		return models.ReportResult{}, err
	}

	rec := models.LocationRecord{
		AgentID:     req.AgentID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Latitude:    coords.Latitude,
		Longitude:   coords.Longitude,
		Geohash:     utils.EncodeCoordinates(coords, constants.RecordGeohashPrecision),
		Address:     address,
		LastUpdated: receivedAt,
	}
	rec.Status = uc.evaluator.Status(rec, receivedAt)

	if err := uc.repo.Upsert(rec); err != nil {
		if errors.Is(err, location.ErrStaleUpdate) {
			metrics.Reports.WithLabelValues(metrics.ReportStale).Inc()
			logger.DebugCtx(ctx, "Discarding stale location report",
				logger.String("agent_id", req.AgentID),
				logger.Time("reported_at", receivedAt))
			current, _ := uc.repo.Get(req.AgentID)
			return models.ReportResult{Record: uc.evaluator.Resolve(current, receivedAt), Applied: false}, nil
		}
		metrics.Reports.WithLabelValues(metrics.ReportFailed).Inc()
		return models.ReportResult{}, fmt.Errorf("failed to store location: %w", err)
	}
	metrics.Reports.WithLabelValues(metrics.ReportApplied).Inc()

	event := models.LocationUpdatedEvent{
		AgentID:     rec.AgentID,
		Role:        rec.Role,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		Geohash:     rec.Geohash,
		Address:     rec.Address,
		LastUpdated: rec.LastUpdated,
	}
	if err := uc.gw.PublishLocationUpdated(ctx, event); err != nil {
		logger.WarnCtx(ctx, "Failed to publish location update",
			logger.String("agent_id", rec.AgentID),
			logger.Err(err))
	}

	return models.ReportResult{Record: rec, Applied: true}, nil
}

// resolve turns a report into coordinates and a label. Geocoding never
// runs while the store is locked.
func (uc *LocationUC) resolve(ctx context.Context, req models.ReportRequest) (models.Coordinates, string, error) {
	if req.Address != "" {
		result, err := uc.geocoder.Forward(ctx, req.Address)
		if err == nil {
			coords := models.Coordinates{Latitude: result.Latitude, Longitude: result.Longitude}
			if !coords.Valid() {
				err = fmt.Errorf("%w: provider returned coordinates out of range", location.ErrUnavailable)
			} else {
				address := result.Address
				if address == "" {
					address = req.Address
				}
				return coords, address, nil
			}
		}

		if req.Coordinates == nil {
			return models.Coordinates{}, "", fmt.Errorf("%w: %w", location.ErrReportFailed, err)
		}
		// the typed address was never resolved, so the record carries no label
		logger.WarnCtx(ctx, "Forward geocoding failed, using reported coordinates",
			logger.String("agent_id", req.AgentID),
			logger.String("address", req.Address),
			logger.Err(err))
		return *req.Coordinates, "", nil
	}

	coords := *req.Coordinates
	if !uc.reverseOnReport {
		return coords, "", nil
	}
	address, err := uc.geocoder.Reverse(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		logger.WarnCtx(ctx, "Reverse geocoding failed, storing location without label",
			logger.String("agent_id", req.AgentID),
			logger.Err(err))
		return coords, "", nil
	}
	return coords, address, nil
}

func validateReport(req *models.ReportRequest) error {
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.Address = utils.SanitizeString(req.Address)
	req.DisplayName = utils.SanitizeDisplayName(req.DisplayName)

	if req.AgentID == "" {
		return fmt.Errorf("%w: agent id is required", location.ErrInvalidInput)
	}
	if !req.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", location.ErrInvalidInput, req.Role)
	}
	if req.Address == "" && req.Coordinates == nil {
		return fmt.Errorf("%w: either an address or coordinates are required", location.ErrInvalidInput)
	}
	if req.Coordinates != nil && !req.Coordinates.Valid() {
		return fmt.Errorf("%w: coordinates out of range (%f, %f)",
			location.ErrInvalidInput, req.Coordinates.Latitude, req.Coordinates.Longitude)
	}
	return nil
}

// QueryFleet builds a view from a fresh snapshot. Cached statuses from the
// last sweep are used as is; records not swept yet are evaluated on demand.
func (uc *LocationUC) QueryFleet(ctx context.Context, filter models.Filter) models.FleetView {
	now := uc.now()
	records := uc.evaluator.ResolveAll(uc.repo.Snapshot(), now)
	view := uc.aggregator.Aggregate(records, filter, now)

	logger.DebugCtx(ctx, "Fleet queried",
		logger.String("status", filter.Status.String()),
		logger.String("role", string(filter.Role)),
		logger.Int("records", len(view.Records)))
	return view
}

// GetLocation returns a single agent's record
func (uc *LocationUC) GetLocation(ctx context.Context, agentID string) (models.LocationRecord, bool) {
	rec, ok := uc.repo.Get(agentID)
	if !ok {
		return models.LocationRecord{}, false
	}
	return uc.evaluator.Resolve(rec, uc.now()), true
}

// RemoveAgent deregisters an agent
func (uc *LocationUC) RemoveAgent(ctx context.Context, agentID string) bool {
	removed := uc.repo.Remove(agentID)
	if removed {
		logger.InfoCtx(ctx, "Agent removed",
			logger.String("agent_id", agentID),
			logger.Int("tracked", uc.repo.Len()))
	}
	return removed
}
