// Package incidents loads the historical piracy incident dataset and answers
// proximity queries against it. The index is immutable after construction and
// safe for concurrent readers; a refresh builds a new index and swaps it in
// through the Store.
package incidents

import (
	"github.com/pelorus-nav/searisk/internal/geo"
	"github.com/pelorus-nav/searisk/internal/models"
)

// Index is an immutable in-memory incident set with proximity queries.
type Index struct {
	records []models.IncidentRecord
	skipped int
}

// NewIndex builds an index over the given records. skipped is the number of
// malformed source rows the loader discarded.
func NewIndex(records []models.IncidentRecord, skipped int) *Index {
	return &Index{records: records, skipped: skipped}
}

// Count returns the number of indexed incidents.
func (ix *Index) Count() int {
	return len(ix.records)
}

// Skipped returns the number of malformed rows discarded at load time.
func (ix *Index) Skipped() int {
	return ix.skipped
}

// Nearby returns every incident within radiusKm of the given point. The scan
// is O(M) with a bounding-box prefilter before the exact haversine check,
// which is plenty at the low-thousands dataset scale this service runs with.
func (ix *Index) Nearby(p models.GeoPoint, radiusKm float64) []models.IncidentRecord {
	if len(ix.records) == 0 || radiusKm <= 0 {
		return nil
	}

	box := geo.BoxAround(p, radiusKm)
	var hits []models.IncidentRecord
	for _, rec := range ix.records {
		if !box.Contains(rec.Location) {
			continue
		}
		if geo.Distance(p, rec.Location) <= radiusKm {
			hits = append(hits, rec)
		}
	}

	return hits
}
