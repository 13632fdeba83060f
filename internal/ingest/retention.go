package ingest

import (
	"sort"

	"fleethub/internal/models"
)

// DefaultMaxRecords bounds a device's telemetry collection unless configured
// otherwise.
const DefaultMaxRecords = 100

// Retention is the per-device capacity policy: keep the Max most recently
// enqueued records, evict the rest. It is independent of the persistence
// technology; callers decide what to do with the evicted rows.
type Retention struct {
	Max int
}

func NewRetention(max int) Retention {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	return Retention{Max: max}
}

// Evict returns the records falling outside the newest Max by enqueue time.
// Out-of-order arrival self-corrects here: ordering is by EnqueuedAt, not by
// insertion order. The input slice is not modified.
func (r Retention) Evict(records []models.LorawanTelemetry) []models.LorawanTelemetry {
	if len(records) <= r.Max {
		return nil
	}
	sorted := make([]models.LorawanTelemetry, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EnqueuedAt.After(sorted[j].EnqueuedAt)
	})
	return sorted[r.Max:]
}
