package models

import "time"

// Role tags an agent for filtering and visual grouping only
type Role string

const (
	RoleOperator Role = "operator"
	RoleCustomer Role = "customer"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleCustomer:
		return true
	}
	return false
}

// LocationStatus is the derived liveness of a record
type LocationStatus string

const (
	// StatusUnknown means the record has not been evaluated since it was stored
	StatusUnknown  LocationStatus = ""
	StatusActive   LocationStatus = "active"
	StatusInactive LocationStatus = "inactive"
)

// Coordinates is a latitude/longitude pair in signed degrees
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Valid reports whether the pair is inside the WGS84 range
func (c Coordinates) Valid() bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

// LocationRecord is the current location of a single agent
type LocationRecord struct {
	AgentID     string         `json:"agent_id"`
	DisplayName string         `json:"display_name"`
	Role        Role           `json:"role"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Geohash     string         `json:"geohash,omitempty"`
	Address     string         `json:"address,omitempty"`
	LastUpdated time.Time      `json:"last_updated"`
	Status      LocationStatus `json:"status"`
}

// Coordinates returns the record position
func (r LocationRecord) Coordinates() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// ReportRequest is a self-reported location. Either Address or Coordinates
// must be set; when both are set Coordinates act as the fallback.
type ReportRequest struct {
	AgentID     string       `json:"agent_id"`
	Role        Role         `json:"role"`
	DisplayName string       `json:"display_name"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// ReportResult is the outcome of a report. Applied is false when the report
// was older than the stored record and got discarded.
type ReportResult struct {
	Record  LocationRecord `json:"record"`
	Applied bool           `json:"applied"`
}

// GeocodeResult is the first match returned by a forward lookup
type GeocodeResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
}

// LocationUpdatedEvent is published after a report is applied
type LocationUpdatedEvent struct {
	AgentID     string    `json:"agent_id"`
	Role        Role      `json:"role"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Geohash     string    `json:"geohash"`
	Address     string    `json:"address,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// ReportReply answers a report sent as a NATS request
type ReportReply struct {
	Result *ReportResult `json:"result,omitempty"`
	Error  string        `json:"error,omitempty"`
}
