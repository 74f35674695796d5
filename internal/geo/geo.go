// Package geo holds the coordinate math the rest of the service is built on:
// haversine distances, route resampling and bounding boxes.
package geo

import (
	"math"

	"github.com/pelorus-nav/searisk/internal/models"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0
	// KmPerDegree approximates one degree of latitude in kilometers, used to
	// convert a radius into a bounding-box prefilter.
	KmPerDegree = 111.32
	// nmPerKm converts kilometers to nautical miles.
	nmPerKm = 0.539957
)

// Distance returns the haversine great-circle distance between two points in
// kilometers. It is symmetric and zero iff both points are equal.
func Distance(a, b models.GeoPoint) float64 {
	if a == b {
		return 0
	}

	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dlat := (b.Latitude - a.Latitude) * math.Pi / 180
	dlon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Asin(math.Sqrt(h))

	return EarthRadiusKm * c
}

// KmToNm converts kilometers to nautical miles.
func KmToNm(km float64) float64 {
	return km * nmPerKm
}

// RouteLengthKm returns the summed segment length of a route in kilometers.
func RouteLengthKm(route models.RoutePath) float64 {
	var total float64
	for i := 0; i+1 < len(route); i++ {
		total += Distance(route[i], route[i+1])
	}

	return total
}

// Interpolate returns the point at fraction t (0..1) along the straight
// lat/lon line between a and b. At the distances proximity checks operate on
// this linear approximation is well within haversine error.
func Interpolate(a, b models.GeoPoint, t float64) models.GeoPoint {
	return models.GeoPoint{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}

// ResamplePair returns a and b plus evenly spaced intermediate points so that
// no spacing exceeds intervalKm. Both endpoints are always preserved.
func ResamplePair(a, b models.GeoPoint, intervalKm float64) []models.GeoPoint {
	dist := Distance(a, b)
	if intervalKm <= 0 || dist <= intervalKm {
		return []models.GeoPoint{a, b}
	}

	// Intermediate points are interpolated linearly in lat/lon space, whose
	// path runs longer than the geodesic on diagonal segments, so a step
	// count derived from the haversine distance alone can leave sub-chords
	// wider than the interval. Grow the count until every sub-chord fits.
	steps := int(math.Ceil(dist / intervalKm))
	points := subdividePair(a, b, steps)
	for maxSpacing(points) > intervalKm {
		steps++
		points = subdividePair(a, b, steps)
	}

	return points
}

func subdividePair(a, b models.GeoPoint, steps int) []models.GeoPoint {
	points := make([]models.GeoPoint, 0, steps+1)
	points = append(points, a)
	for k := 1; k < steps; k++ {
		points = append(points, Interpolate(a, b, float64(k)/float64(steps)))
	}
	points = append(points, b)

	return points
}

func maxSpacing(points []models.GeoPoint) float64 {
	var widest float64
	for i := 0; i+1 < len(points); i++ {
		widest = max(widest, Distance(points[i], points[i+1]))
	}

	return widest
}

// Resample resamples a whole route to points spaced at most intervalKm apart,
// preserving every original vertex including the endpoints. Used so proximity
// checks cannot miss a hazard lying between sparse route vertices.
func Resample(route models.RoutePath, intervalKm float64) []models.GeoPoint {
	if len(route) == 0 {
		return nil
	}

	points := []models.GeoPoint{route[0]}
	for i := 0; i+1 < len(route); i++ {
		pair := ResamplePair(route[i], route[i+1], intervalKm)
		points = append(points, pair[1:]...)
	}

	return points
}

// BoundingBox is a latitude/longitude rectangle used to prefilter incident
// scans before the exact haversine check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoxAround returns a bounding box centered on p and widened by radiusKm
// converted to degrees x1.5, matching the prefilter margin of the incident
// dataset this service was built for. The box does not wrap at the
// antimeridian, so incidents just across the +-180 line are not prefiltered
// in for points near it.
func BoxAround(p models.GeoPoint, radiusKm float64) BoundingBox {
	const widen = 1.5
	deg := radiusKm / KmPerDegree * widen

	return BoundingBox{
		MinLat: p.Latitude - deg,
		MaxLat: p.Latitude + deg,
		MinLon: p.Longitude - deg,
		MaxLon: p.Longitude + deg,
	}
}

// Contains reports whether the box contains the given point.
func (b BoundingBox) Contains(p models.GeoPoint) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}
