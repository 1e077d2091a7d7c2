package constants

// WebSocket events pushed to dashboards
const (
	EventFleetView = "fleet.view"
	EventError     = "error"
)

// WebSocket error codes
const (
	WSErrInvalidMessage = "invalid_message"
	WSErrInvalidFilter  = "invalid_filter"
)
