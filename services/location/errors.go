package location

import "errors"

var (
	// ErrInvalidInput marks malformed coordinates, empty addresses or unknown roles
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks a geocoding lookup that matched nothing
	ErrNotFound = errors.New("address not found")
	// ErrUnavailable marks a network failure or timeout talking to the geocoding provider
	ErrUnavailable = errors.New("geocoding provider unavailable")
	// ErrStaleUpdate marks an upsert older than, or as old as, the stored record
	ErrStaleUpdate = errors.New("stale location update")
	// ErrReportFailed marks a report that could not be resolved to a location
	ErrReportFailed = errors.New("location report failed")
)
