package constants

// NATS Subjects
const (
	// SubjectLocationReport carries inbound self-reports
	SubjectLocationReport = "location.report"
	// SubjectLocationUpdated carries applied reports
	SubjectLocationUpdated = "location.updated"
)

// QueueLocationService load-balances inbound reports across replicas
const QueueLocationService = "location-service"
