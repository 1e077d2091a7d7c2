package aggregator

import (
	"testing"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/services/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id string, role models.Role, status models.LocationStatus, lat, lng float64, age time.Duration) models.LocationRecord {
	return models.LocationRecord{
		AgentID:     id,
		Role:        role,
		Status:      status,
		Latitude:    lat,
		Longitude:   lng,
		LastUpdated: now.Add(-age),
	}
}

func TestAggregate_Bounds(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusActive, 6.50, 3.37, time.Second),
		record("b", models.RoleOperator, models.StatusActive, 6.60, 3.40, 2*time.Second),
		record("c", models.RoleCustomer, models.StatusInactive, 6.45, 3.35, time.Hour),
	}

	view := New(5).Aggregate(records, models.FilterAll(), now)

	require.True(t, view.HasBounds())
	assert.Equal(t, models.Bounds{MinLat: 6.45, MaxLat: 6.60, MinLng: 3.35, MaxLng: 3.40}, *view.Bounds)
	assert.Equal(t, models.FleetSummary{Total: 3, Active: 2, Inactive: 1}, view.Summary)
	assert.Equal(t, now, view.GeneratedAt)

	require.Len(t, view.Clusters, 3)
	assert.Equal(t, "s14ks", view.Clusters[0].Geohash)
	assert.Equal(t, "s14ku", view.Clusters[1].Geohash)
	assert.Equal(t, "s14mt", view.Clusters[2].Geohash)
}

func TestAggregate_EmptySetHasNoBounds(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusActive, 6.50, 3.37, time.Second),
	}

	view := New(5).Aggregate(records, models.ByRole(models.RoleOperator), now)

	assert.Nil(t, view.Bounds)
	assert.False(t, view.HasBounds())
	assert.Empty(t, view.Records)
	assert.NotNil(t, view.Records)
	assert.Empty(t, view.Clusters)
	assert.Equal(t, models.FleetSummary{}, view.Summary)
}

func TestAggregate_EmptyStore(t *testing.T) {
	view := New(5).Aggregate(nil, models.ActiveOnly(), now)

	assert.Nil(t, view.Bounds)
	assert.Empty(t, view.Records)
}

func TestAggregate_SinglePointBoundsDegenerate(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusActive, 6.5244, 3.3792, time.Second),
	}

	view := New(5).Aggregate(records, models.FilterAll(), now)

	require.NotNil(t, view.Bounds)
	assert.Equal(t, models.Bounds{MinLat: 6.5244, MaxLat: 6.5244, MinLng: 3.3792, MaxLng: 3.3792}, *view.Bounds)
}

func TestAggregate_Ordering(t *testing.T) {
	records := []models.LocationRecord{
		record("old", models.RoleCustomer, models.StatusActive, 1, 1, time.Minute),
		record("tie-b", models.RoleCustomer, models.StatusActive, 2, 2, time.Second),
		record("newest", models.RoleCustomer, models.StatusActive, 3, 3, 0),
		record("tie-a", models.RoleCustomer, models.StatusActive, 4, 4, time.Second),
	}

	view := New(5).Aggregate(records, models.FilterAll(), now)

	ids := make([]string, 0, len(view.Records))
	for _, rec := range view.Records {
		ids = append(ids, rec.AgentID)
	}
	assert.Equal(t, []string{"newest", "tie-a", "tie-b", "old"}, ids)
}

func TestAggregate_Filters(t *testing.T) {
	records := []models.LocationRecord{
		record("cust-active", models.RoleCustomer, models.StatusActive, 1, 1, 0),
		record("cust-inactive", models.RoleCustomer, models.StatusInactive, 2, 2, time.Hour),
		record("op-active", models.RoleOperator, models.StatusActive, 3, 3, time.Second),
		record("op-inactive", models.RoleOperator, models.StatusInactive, 4, 4, 2*time.Hour),
	}

	tests := []struct {
		name     string
		filter   models.Filter
		expected []string
	}{
		{name: "all", filter: models.FilterAll(), expected: []string{"cust-active", "op-active", "cust-inactive", "op-inactive"}},
		{name: "active only", filter: models.ActiveOnly(), expected: []string{"cust-active", "op-active"}},
		{name: "inactive only", filter: models.InactiveOnly(), expected: []string{"cust-inactive", "op-inactive"}},
		{name: "by role", filter: models.ByRole(models.RoleOperator), expected: []string{"op-active", "op-inactive"}},
		{name: "active operators", filter: models.ActiveOnly().WithRole(models.RoleOperator), expected: []string{"op-active"}},
		{name: "inactive customers", filter: models.InactiveOnly().WithRole(models.RoleCustomer), expected: []string{"cust-inactive"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := New(5).Aggregate(records, tt.filter, now)

			ids := make([]string, 0, len(view.Records))
			for _, rec := range view.Records {
				ids = append(ids, rec.AgentID)
			}
			assert.Equal(t, tt.expected, ids)
			assert.Equal(t, tt.filter, view.Filter)
		})
	}
}

func TestAggregate_UnknownStatusOnlyMatchesAll(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusUnknown, 1, 1, 0),
	}

	assert.Len(t, New(5).Aggregate(records, models.FilterAll(), now).Records, 1)
	assert.Empty(t, New(5).Aggregate(records, models.ActiveOnly(), now).Records)
	assert.Empty(t, New(5).Aggregate(records, models.InactiveOnly(), now).Records)
}

func TestAggregate_ClustersGroupNearbyRecords(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusActive, 6.4281, 3.4219, 0),
		record("b", models.RoleCustomer, models.StatusActive, 6.4290, 3.4225, 0),
		record("c", models.RoleOperator, models.StatusActive, 6.6018, 3.3515, 0),
	}
	records[0].Geohash = "s14ktf5y2"

	view := New(5).Aggregate(records, models.FilterAll(), now)

	require.Len(t, view.Clusters, 2)
	assert.Equal(t, "s14kt", view.Clusters[0].Geohash)
	assert.Equal(t, 2, view.Clusters[0].Count)
	assert.InDelta(t, 6.42855, view.Clusters[0].Latitude, 1e-9)
	assert.InDelta(t, 3.4222, view.Clusters[0].Longitude, 1e-9)
	assert.Equal(t, "s14ms", view.Clusters[1].Geohash)
	assert.Equal(t, 1, view.Clusters[1].Count)
}

func TestAggregate_DoesNotReorderInput(t *testing.T) {
	records := []models.LocationRecord{
		record("a", models.RoleCustomer, models.StatusActive, 1, 1, time.Minute),
		record("b", models.RoleCustomer, models.StatusActive, 2, 2, 0),
	}

	_ = New(5).Aggregate(records, models.FilterAll(), now)

	assert.Equal(t, "a", records[0].AgentID)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		role     string
		expected models.Filter
		wantErr  bool
	}{
		{name: "empty", expected: models.FilterAll()},
		{name: "all", status: "all", expected: models.FilterAll()},
		{name: "active", status: "active", expected: models.ActiveOnly()},
		{name: "inactive operators", status: "inactive", role: "operator", expected: models.InactiveOnly().WithRole(models.RoleOperator)},
		{name: "customers", role: "customer", expected: models.ByRole(models.RoleCustomer)},
		{name: "unknown status", status: "sleeping", wantErr: true},
		{name: "unknown role", role: "admin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := ParseFilter(tt.status, tt.role)
			if tt.wantErr {
				assert.ErrorIs(t, err, location.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}
