package location

import (
	"github.com/piresc/fleetwatch/internal/pkg/models"
)

// LocationRepo is the authoritative table of one current location per agent
type LocationRepo interface {
	// Upsert replaces the agent's record unless the stored one is at least as recent,
	// in which case ErrStaleUpdate is returned and nothing changes
	Upsert(rec models.LocationRecord) error
	Get(agentID string) (models.LocationRecord, bool)
	// Snapshot returns a point-in-time copy of every record in insertion order
	Snapshot() []models.LocationRecord
	Remove(agentID string) bool
	Len() int

	// ApplyStatus recomputes the cached status of every record and returns how many changed
	ApplyStatus(fn func(models.LocationRecord) models.LocationStatus) int
}
