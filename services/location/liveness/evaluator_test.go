package liveness

import (
	"testing"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_Boundary(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	staleAfter := 5 * time.Minute

	tests := []struct {
		name        string
		lastUpdated time.Time
		expected    models.LocationStatus
	}{
		{name: "just past threshold", lastUpdated: now.Add(-staleAfter - time.Millisecond), expected: models.StatusInactive},
		{name: "just inside threshold", lastUpdated: now.Add(-staleAfter + time.Millisecond), expected: models.StatusActive},
		{name: "exactly at threshold", lastUpdated: now.Add(-staleAfter), expected: models.StatusActive},
		{name: "fresh", lastUpdated: now, expected: models.StatusActive},
		{name: "reported from the future", lastUpdated: now.Add(time.Minute), expected: models.StatusActive},
		{name: "long gone", lastUpdated: now.Add(-24 * time.Hour), expected: models.StatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Evaluate(tt.lastUpdated, now, staleAfter))
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	last := now.Add(-3 * time.Minute)

	first := Evaluate(last, now, time.Minute)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(last, now, time.Minute))
	}
}

func TestEvaluator_Resolve(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEvaluator(time.Minute)

	t.Run("unknown status is evaluated on demand", func(t *testing.T) {
		rec := models.LocationRecord{AgentID: "a", LastUpdated: now.Add(-2 * time.Minute)}
		assert.Equal(t, models.StatusInactive, e.Resolve(rec, now).Status)
	})

	t.Run("cached status is kept", func(t *testing.T) {
		rec := models.LocationRecord{AgentID: "a", LastUpdated: now.Add(-2 * time.Minute), Status: models.StatusActive}
		assert.Equal(t, models.StatusActive, e.Resolve(rec, now).Status)
	})

	t.Run("resolve all", func(t *testing.T) {
		records := []models.LocationRecord{
			{AgentID: "a", LastUpdated: now},
			{AgentID: "b", LastUpdated: now.Add(-time.Hour)},
		}
		out := e.ResolveAll(records, now)
		assert.Equal(t, models.StatusActive, out[0].Status)
		assert.Equal(t, models.StatusInactive, out[1].Status)
	})
}
