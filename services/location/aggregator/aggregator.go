package aggregator

import (
	"fmt"
	"sort"
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/internal/utils"
	"github.com/piresc/fleetwatch/services/location"
)

// DefaultClusterPrecision groups records into cells a few kilometres wide
const DefaultClusterPrecision = 5

// Aggregator turns a store snapshot into a fleet view
type Aggregator struct {
	clusterPrecision uint
}

// New creates an aggregator clustering on geohash prefixes of the given length
func New(clusterPrecision uint) *Aggregator {
	if clusterPrecision == 0 {
		clusterPrecision = DefaultClusterPrecision
	}
	return &Aggregator{clusterPrecision: clusterPrecision}
}

// Aggregate filters records, orders them most recently updated first and
// computes bounds, clusters and counts. Records must carry a resolved
// status; an unknown status only matches a filter on all statuses.
func (a *Aggregator) Aggregate(records []models.LocationRecord, filter models.Filter, now time.Time) models.FleetView {
	filtered := make([]models.LocationRecord, 0, len(records))
	for _, rec := range records {
		if Matches(rec, filter) {
			filtered = append(filtered, rec)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].LastUpdated.Equal(filtered[j].LastUpdated) {
			return filtered[i].LastUpdated.After(filtered[j].LastUpdated)
		}
		return filtered[i].AgentID < filtered[j].AgentID
	})

	return models.FleetView{
		Records:     filtered,
		Bounds:      ComputeBounds(filtered),
		Clusters:    a.clusters(filtered),
		Summary:     summarize(filtered),
		Filter:      filter,
		GeneratedAt: now,
	}
}

// Matches reports whether rec passes every dimension of filter
func Matches(rec models.LocationRecord, filter models.Filter) bool {
	if filter.Role != "" && rec.Role != filter.Role {
		return false
	}
	switch filter.Status {
	case models.StatusActiveOnly:
		return rec.Status == models.StatusActive
	case models.StatusInactiveOnly:
		return rec.Status == models.StatusInactive
	default:
		return true
	}
}

// ComputeBounds returns the exact extent of records, or nil for an empty set
func ComputeBounds(records []models.LocationRecord) *models.Bounds {
	if len(records) == 0 {
		return nil
	}

	b := &models.Bounds{
		MinLat: records[0].Latitude,
		MaxLat: records[0].Latitude,
		MinLng: records[0].Longitude,
		MaxLng: records[0].Longitude,
	}
	for _, rec := range records[1:] {
		b.MinLat = min(b.MinLat, rec.Latitude)
		b.MaxLat = max(b.MaxLat, rec.Latitude)
		b.MinLng = min(b.MinLng, rec.Longitude)
		b.MaxLng = max(b.MaxLng, rec.Longitude)
	}
	return b
}

type clusterAcc struct {
	count  int
	sumLat float64
	sumLng float64
}

// clusters groups records by geohash prefix. Cluster coordinates are the
// centroid of the members.
func (a *Aggregator) clusters(records []models.LocationRecord) []models.Cluster {
	acc := make(map[string]*clusterAcc)
	for _, rec := range records {
		hash := rec.Geohash
		if uint(len(hash)) < a.clusterPrecision {
			hash = utils.EncodeCoordinates(rec.Coordinates(), a.clusterPrecision)
		}
		key := utils.GeohashPrefix(hash, a.clusterPrecision)

		c, ok := acc[key]
		if !ok {
			c = &clusterAcc{}
			acc[key] = c
		}
		c.count++
		c.sumLat += rec.Latitude
		c.sumLng += rec.Longitude
	}

	out := make([]models.Cluster, 0, len(acc))
	for key, c := range acc {
		out = append(out, models.Cluster{
			Geohash:   key,
			Count:     c.count,
			Latitude:  c.sumLat / float64(c.count),
			Longitude: c.sumLng / float64(c.count),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Geohash < out[j].Geohash
	})
	return out
}

func summarize(records []models.LocationRecord) models.FleetSummary {
	s := models.FleetSummary{Total: len(records)}
	for _, rec := range records {
		switch rec.Status {
		case models.StatusActive:
			s.Active++
		case models.StatusInactive:
			s.Inactive++
		}
	}
	return s
}

// ParseFilter builds a filter from query parameters. Empty values match
// everything.
func ParseFilter(status, role string) (models.Filter, error) {
	var f models.Filter
	if err := f.Status.UnmarshalText([]byte(status)); err != nil {
		return models.Filter{}, fmt.Errorf("%w: %v", location.ErrInvalidInput, err)
	}
	if role != "" {
		r := models.Role(role)
		if !r.Valid() {
			return models.Filter{}, fmt.Errorf("%w: unknown role %q", location.ErrInvalidInput, role)
		}
		f.Role = r
	}
	return f, nil
}
