package models

// WSMessage is a message pushed to a dashboard connection
type WSMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WSErrorMessage represents an error message sent over WebSocket
type WSErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DashboardCommand changes the filter a dashboard watches
type DashboardCommand struct {
	Status string `json:"status"`
	Role   string `json:"role"`
}
