package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCoordinate is returned when a coordinate is non-finite or outside
// the WGS84 range.
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// GeoPoint represents a geographical point in degrees (WGS84).
type GeoPoint struct {
	Latitude  float64 `json:"lat"` // Latitude of the geographical point, [-90, 90].
	Longitude float64 `json:"lon"` // Longitude of the geographical point, [-180, 180].
}

// Validate checks that both coordinates are finite numbers within the WGS84
// range. Malformed coordinates are rejected here, at the primitive boundary,
// rather than silently coerced further up the pipeline.
func (p GeoPoint) Validate() error {
	if math.IsNaN(p.Latitude) || math.IsInf(p.Latitude, 0) ||
		math.IsNaN(p.Longitude) || math.IsInf(p.Longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite, got (%v, %v)",
			ErrInvalidCoordinate, p.Latitude, p.Longitude)
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidCoordinate, p.Latitude)
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidCoordinate, p.Longitude)
	}

	return nil
}
