package geo

import (
	"math"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
// The value is a sphere approximation, kept fixed so distances stay
// comparable across deployments.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance calculates the great-circle distance between two points using
// the Haversine formula.
// Returns: distance in kilometers.
//
// The function is symmetric and non-negative; identical points yield 0 and
// antipodal points yield roughly pi * EarthRadiusKm (~20015 km). NaN or
// infinite coordinates propagate NaN rather than panicking; callers are
// expected to validate ranges before storing coordinates.
func Distance(p1, p2 Point) float64 {
	lat1Rad := degToRad(p1.Latitude)
	lon1Rad := degToRad(p1.Longitude)
	lat2Rad := degToRad(p2.Latitude)
	lon2Rad := degToRad(p2.Longitude)

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	// Rounding can push a just past 1 for near-antipodal points, which would
	// make Sqrt(1-a) NaN.
	if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// WithinRadius reports whether p lies within radiusKm of ref. The boundary
// is inclusive: a point exactly radiusKm away counts as inside.
func WithinRadius(ref, p Point, radiusKm float64) bool {
	return Distance(ref, p) <= radiusKm
}

// degToRad converts degrees to radians
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
