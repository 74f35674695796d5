package models

import (
	"errors"
	"fmt"
)

// ErrRouteTooShort is returned when a route has fewer than two points.
var ErrRouteTooShort = errors.New("route must contain at least two points")

// RoutePath is an ordered sequence of geographical points describing a sea
// route. Insertion order is travel order. A RoutePath is never mutated by
// scoring; classification produces a new annotated structure.
type RoutePath []GeoPoint

// Validate checks that the path has at least two points and that every point
// carries valid coordinates.
func (r RoutePath) Validate() error {
	const minPoints = 2
	if len(r) < minPoints {
		return ErrRouteTooShort
	}
	for i, p := range r {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("route point %d: %w", i, err)
		}
	}

	return nil
}
