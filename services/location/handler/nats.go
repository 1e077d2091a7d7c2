package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/logger"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	natspkg "github.com/piresc/fleetwatch/internal/pkg/nats"
	"github.com/piresc/fleetwatch/internal/pkg/requestcontext"
	"github.com/piresc/fleetwatch/services/location"
)

// LocationHandler consumes location reports published on NATS
type LocationHandler struct {
	locationUC location.LocationUC
	natsClient *natspkg.Client
	subs       []*nats.Subscription
	timeout    time.Duration
}

// NewLocationHandler creates a new location NATS handler. timeout bounds
// the handling of a single report, geocoding included.
func NewLocationHandler(
	locationUC location.LocationUC,
	client *natspkg.Client,
	timeout time.Duration,
) *LocationHandler {
	return &LocationHandler{
		locationUC: locationUC,
		natsClient: client,
		subs:       make([]*nats.Subscription, 0),
		timeout:    timeout,
	}
}

// InitNATSConsumers subscribes to inbound location reports
func (h *LocationHandler) InitNATSConsumers() error {
	logger.Info("Initializing NATS consumers for location service",
		logger.String("subject", constants.SubjectLocationReport),
		logger.String("queue", constants.QueueLocationService))

	sub, err := h.natsClient.QueueSubscribe(constants.SubjectLocationReport, constants.QueueLocationService, h.handleLocationReportMsg)
	if err != nil {
		logger.Error("Failed to subscribe to location reports", logger.Err(err))
		return fmt.Errorf("failed to subscribe to location reports: %w", err)
	}
	h.subs = append(h.subs, sub)
	return nil
}

// Close unsubscribes every consumer
func (h *LocationHandler) Close() {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
			logger.Warn("Failed to unsubscribe", logger.String("subject", sub.Subject), logger.Err(err))
		}
	}
	h.subs = nil
}

func (h *LocationHandler) handleLocationReportMsg(msg *nats.Msg) {
	result, err := h.handleLocationReport(msg.Data)
	if err != nil {
		logger.Warn("Dropping location report",
			logger.String("subject", msg.Subject),
			logger.Err(err))
	}

	if msg.Reply == "" {
		return
	}
	reply := models.ReportReply{}
	if err != nil {
		reply.Error = err.Error()
	} else {
		reply.Result = &result
	}
	data, merr := json.Marshal(reply)
	if merr != nil {
		logger.Error("Failed to marshal report reply", logger.Err(merr))
		return
	}
	if rerr := msg.Respond(data); rerr != nil {
		logger.Warn("Failed to reply to location report", logger.Err(rerr))
	}
}

// handleLocationReport processes a single report. Reports cannot be
// retried, so failures are logged and dropped.
func (h *LocationHandler) handleLocationReport(data []byte) (models.ReportResult, error) {
	var req models.ReportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return models.ReportResult{}, fmt.Errorf("%w: malformed report: %v", location.ErrInvalidInput, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	ctx = requestcontext.WithRequestContext(ctx, &requestcontext.RequestContext{
		RequestID:   uuid.NewString(),
		AgentID:     req.AgentID,
		ServiceName: constants.QueueLocationService,
		StartTime:   time.Now(),
	})

	result, err := h.locationUC.ReportLocation(ctx, req)
	if err != nil {
		return models.ReportResult{}, err
	}
	logger.DebugCtx(ctx, "Location report consumed",
		logger.String("agent_id", req.AgentID),
		logger.Bool("applied", result.Applied))
	return result, nil
}
