package gateway

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	natsserver "github.com/nats-io/nats-server/v2/test"
	"github.com/piresc/fleetwatch/internal/pkg/constants"
	"github.com/piresc/fleetwatch/internal/pkg/models"
	natspkg "github.com/piresc/fleetwatch/internal/pkg/nats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishLocationUpdated(t *testing.T) {
	srv := natsserver.RunRandClientPortServer()
	defer srv.Shutdown()

	client, err := natspkg.NewClient(srv.ClientURL(), "test")
	require.NoError(t, err)
	defer client.Close()

	msgCh := make(chan *nats.Msg, 1)
	sub, err := client.GetConn().Subscribe(constants.SubjectLocationUpdated, func(msg *nats.Msg) {
		msgCh <- msg
	})
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	event := models.LocationUpdatedEvent{
		AgentID:     "agent-1",
		Role:        models.RoleOperator,
		Latitude:    6.6018,
		Longitude:   3.3515,
		Geohash:     "s14ms3b6r",
		LastUpdated: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	err = NewLocationGW(client).PublishLocationUpdated(context.Background(), event)
	require.NoError(t, err)

	select {
	case msg := <-msgCh:
		var published models.LocationUpdatedEvent
		require.NoError(t, json.Unmarshal(msg.Data, &published))
		assert.Equal(t, event, published)
	case <-time.After(2 * time.Second):
		t.Fatal("Did not receive published message")
	}
}

func TestPublishLocationUpdated_ClosedConnection(t *testing.T) {
	srv := natsserver.RunRandClientPortServer()
	defer srv.Shutdown()

	client, err := natspkg.NewClient(srv.ClientURL(), "test")
	require.NoError(t, err)
	client.GetConn().Close()

	err = NewLocationGW(client).PublishLocationUpdated(context.Background(), models.LocationUpdatedEvent{AgentID: "a"})

	assert.ErrorContains(t, err, "failed to publish location update for a")
}

func TestNoopLocationGW(t *testing.T) {
	assert.NoError(t, NewNoopLocationGW().PublishLocationUpdated(context.Background(), models.LocationUpdatedEvent{}))
}
