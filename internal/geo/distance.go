// Package geo holds the great-circle math used to verify geofences.
package geo

import (
	"fmt"
	"math"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/paulmach/orb"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0
	// MetersPerDegree approximates the length of one degree of latitude.
	MetersPerDegree = 111000.0
)

// HaversineDistance returns the great-circle distance between a and b in meters.
func HaversineDistance(a, b models.Coordinates) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Latitude())
	lat2 := toRadians(b.Latitude())
	dLat := lat2 - lat1
	dLon := toRadians(b.Longitude() - a.Longitude())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h marginally outside [0,1] for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsWithinRadius reports whether b lies within radiusMeters of a.
// A non-positive radius is a caller error.
func IsWithinRadius(a, b models.Coordinates, radiusMeters float64) (bool, error) {
	if math.IsNaN(radiusMeters) || radiusMeters <= 0 {
		return false, fmt.Errorf("%w: radius must be positive, got %v", models.ErrValidation, radiusMeters)
	}
	return HaversineDistance(a, b) <= radiusMeters, nil
}

// BoundingBoxOffsets returns the latitude and longitude half-spans, in degrees,
// of a box enclosing a circle of radiusMeters around center.
func BoundingBoxOffsets(center models.Coordinates, radiusMeters float64) (float64, float64) {
	latOffset := radiusMeters / MetersPerDegree

	cosLat := math.Cos(toRadians(center.Latitude()))
	if cosLat < 1e-9 {
		return latOffset, 180
	}
	lonOffset := radiusMeters / (MetersPerDegree * cosLat)

	return latOffset, math.Min(lonOffset, 180)
}

// BoundingBox returns the approximate box around center for radiusMeters,
// clamped to valid coordinate ranges. Points are (lon, lat) as in orb.
// Use BoundingBoxes when the box may cross the antimeridian.
func BoundingBox(center models.Coordinates, radiusMeters float64) orb.Bound {
	latOffset, lonOffset := BoundingBoxOffsets(center, radiusMeters)
	minLat, maxLat := latitudeSpan(center, latOffset)

	return orb.Bound{
		Min: orb.Point{math.Max(center.Longitude()-lonOffset, -180), minLat},
		Max: orb.Point{math.Min(center.Longitude()+lonOffset, 180), maxLat},
	}
}

// BoundingBoxes is BoundingBox split at the antimeridian: a box that would
// extend past ±180 is returned as two boxes, the overflow wrapped to the
// other side. Otherwise it holds the single BoundingBox.
func BoundingBoxes(center models.Coordinates, radiusMeters float64) []orb.Bound {
	latOffset, lonOffset := BoundingBoxOffsets(center, radiusMeters)
	minLat, maxLat := latitudeSpan(center, latOffset)
	west := center.Longitude() - lonOffset
	east := center.Longitude() + lonOffset

	switch {
	case lonOffset >= 180:
		return []orb.Bound{{Min: orb.Point{-180, minLat}, Max: orb.Point{180, maxLat}}}
	case west < -180:
		return []orb.Bound{
			{Min: orb.Point{-180, minLat}, Max: orb.Point{east, maxLat}},
			{Min: orb.Point{west + 360, minLat}, Max: orb.Point{180, maxLat}},
		}
	case east > 180:
		return []orb.Bound{
			{Min: orb.Point{west, minLat}, Max: orb.Point{180, maxLat}},
			{Min: orb.Point{-180, minLat}, Max: orb.Point{east - 360, maxLat}},
		}
	default:
		return []orb.Bound{{Min: orb.Point{west, minLat}, Max: orb.Point{east, maxLat}}}
	}
}

func latitudeSpan(center models.Coordinates, latOffset float64) (float64, float64) {
	return math.Max(center.Latitude()-latOffset, -90), math.Min(center.Latitude()+latOffset, 90)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
