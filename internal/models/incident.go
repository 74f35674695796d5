package models

import "time"

// DefaultIncidentSeverity is assumed for records whose source carries no
// severity column.
const DefaultIncidentSeverity = 1.0

// IncidentRecord is a historical piracy/hazard event. Records are loaded once
// from a static dataset and are read-only thereafter; a refresh swaps the
// whole index rather than mutating records in place.
type IncidentRecord struct {
	Location   GeoPoint          // Location is where the incident occurred.
	Severity   float64           // Severity is a numeric weight, DefaultIncidentSeverity when absent.
	OccurredAt time.Time         // OccurredAt is the incident date, zero when the source has none.
	Attrs      map[string]string // Attrs holds remaining source columns, never inspected by scoring.
}
