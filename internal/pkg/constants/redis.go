package constants

import "time"

// Redis key formats
const (
	KeyGeocodeForward = "geocode:fwd:%s" // Format: geocode:fwd:{normalized address}
	KeyGeocodeReverse = "geocode:rev:%s" // Format: geocode:rev:{geohash}
)

// ReverseCachePrecision is the geohash length of a reverse-geocode cache key (~150m cells)
const ReverseCachePrecision = 7

// RecordGeohashPrecision is the geohash length stored on every record
const RecordGeohashPrecision = 9

// DefaultGeocodeCacheTTL bounds how long a provider answer is reused
const DefaultGeocodeCacheTTL = 24 * time.Hour
