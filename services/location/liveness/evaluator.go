package liveness

import (
	"time"

	"github.com/piresc/fleetwatch/internal/pkg/models"
)

// Evaluate returns inactive once now-lastUpdated exceeds staleAfter.
// A record exactly staleAfter old is still active.
func Evaluate(lastUpdated, now time.Time, staleAfter time.Duration) models.LocationStatus {
	if now.Sub(lastUpdated) > staleAfter {
		return models.StatusInactive
	}
	return models.StatusActive
}

// Evaluator applies the deployment-wide staleness threshold
type Evaluator struct {
	staleAfter time.Duration
}

// NewEvaluator creates an evaluator with the given threshold
func NewEvaluator(staleAfter time.Duration) *Evaluator {
	return &Evaluator{staleAfter: staleAfter}
}

// StaleAfter returns the configured threshold
func (e *Evaluator) StaleAfter() time.Duration {
	return e.staleAfter
}

// Status computes the status of rec at now, ignoring any cached value
func (e *Evaluator) Status(rec models.LocationRecord, now time.Time) models.LocationStatus {
	return Evaluate(rec.LastUpdated, now, e.staleAfter)
}

// Resolve returns rec with a status filled in. A cached status is kept;
// records not swept yet are evaluated on demand.
func (e *Evaluator) Resolve(rec models.LocationRecord, now time.Time) models.LocationRecord {
	if rec.Status == models.StatusUnknown {
		rec.Status = e.Status(rec, now)
	}
	return rec
}

// ResolveAll applies Resolve to every record in place
func (e *Evaluator) ResolveAll(records []models.LocationRecord, now time.Time) []models.LocationRecord {
	for i := range records {
		records[i] = e.Resolve(records[i], now)
	}
	return records
}
