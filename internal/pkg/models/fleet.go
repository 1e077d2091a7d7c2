package models

import (
	"fmt"
	"time"
)

// StatusFilter selects records by derived status
type StatusFilter int

const (
	StatusAll StatusFilter = iota
	StatusActiveOnly
	StatusInactiveOnly
)

func (s StatusFilter) String() string {
	switch s {
	case StatusActiveOnly:
		return "active"
	case StatusInactiveOnly:
		return "inactive"
	default:
		return "all"
	}
}

// MarshalText renders the filter as "all", "active" or "inactive"
func (s StatusFilter) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses "all", "active" or "inactive"; empty means all
func (s *StatusFilter) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "all":
		*s = StatusAll
	case "active":
		*s = StatusActiveOnly
	case "inactive":
		*s = StatusInactiveOnly
	default:
		return fmt.Errorf("unknown status filter %q", string(text))
	}
	return nil
}

// Filter selects the records of a fleet view. Status and Role are combined
// with a logical AND; an empty Role matches every role.
type Filter struct {
	Status StatusFilter `json:"status"`
	Role   Role         `json:"role,omitempty"`
}

// FilterAll matches every record
func FilterAll() Filter { return Filter{Status: StatusAll} }

// ActiveOnly matches active records
func ActiveOnly() Filter { return Filter{Status: StatusActiveOnly} }

// InactiveOnly matches inactive records
func InactiveOnly() Filter { return Filter{Status: StatusInactiveOnly} }

// ByRole matches records of a single role regardless of status
func ByRole(r Role) Filter { return Filter{Status: StatusAll, Role: r} }

// WithRole narrows f to a single role
func (f Filter) WithRole(r Role) Filter {
	f.Role = r
	return f
}

// Bounds is the exact extent of a non-empty set of points
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Cluster groups records sharing a geohash prefix
type Cluster struct {
	Geohash   string  `json:"geohash"`
	Count     int     `json:"count"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FleetSummary counts the records of a view by status
type FleetSummary struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// FleetView is the filtered, ordered and bounded view handed to a map
// surface. Bounds is nil when no record matched the filter.
type FleetView struct {
	Records     []LocationRecord `json:"records"`
	Bounds      *Bounds          `json:"bounds"`
	Clusters    []Cluster        `json:"clusters"`
	Summary     FleetSummary     `json:"summary"`
	Filter      Filter           `json:"filter"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// HasBounds reports whether the view carries a bounding region
func (v FleetView) HasBounds() bool {
	return v.Bounds != nil
}
