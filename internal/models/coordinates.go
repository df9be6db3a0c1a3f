package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// ErrValidation is returned when a coordinate, radius or building field is malformed.
// Callers match it with errors.Is; values are rejected, never clamped.
var ErrValidation = errors.New("validation failed")

const coordinatePrecision = 1e6 // 6 decimal places, about 11 cm

// Coordinates represents a validated geographical point.
// The zero value is the point (0, 0) and is valid.
type Coordinates struct {
	latitude  float64 // Latitude of the geographical point.
	longitude float64 // Longitude of the geographical point.
}

// NewCoordinates validates latitude and longitude and rounds both to 6 decimal places.
// It returns an error wrapping ErrValidation when either value is out of range.
func NewCoordinates(latitude, longitude float64) (Coordinates, error) {
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude must be between -90 and 90, got %v", ErrValidation, latitude)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude must be between -180 and 180, got %v", ErrValidation, longitude)
	}

	return Coordinates{
		latitude:  roundCoordinate(latitude),
		longitude: roundCoordinate(longitude),
	}, nil
}

// MustCoordinates is like NewCoordinates but panics on invalid input.
// Intended for constants and tests.
func MustCoordinates(latitude, longitude float64) Coordinates {
	coords, err := NewCoordinates(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return coords
}

func roundCoordinate(v float64) float64 {
	return math.Round(v*coordinatePrecision) / coordinatePrecision
}

// Latitude returns the latitude in decimal degrees.
func (c Coordinates) Latitude() float64 { return c.latitude }

// Longitude returns the longitude in decimal degrees.
func (c Coordinates) Longitude() float64 { return c.longitude }

// WithLatitude returns a new validated point with the latitude replaced.
func (c Coordinates) WithLatitude(latitude float64) (Coordinates, error) {
	return NewCoordinates(latitude, c.longitude)
}

// WithLongitude returns a new validated point with the longitude replaced.
func (c Coordinates) WithLongitude(longitude float64) (Coordinates, error) {
	return NewCoordinates(c.latitude, longitude)
}

// String implements fmt.Stringer.
func (c Coordinates) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", c.latitude, c.longitude)
}

type coordinatesJSON struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// MarshalJSON implements json.Marshaler.
func (c Coordinates) MarshalJSON() ([]byte, error) {
	return json.Marshal(coordinatesJSON{Latitude: &c.latitude, Longitude: &c.longitude})
}

// UnmarshalJSON implements json.Unmarshaler. Both fields are required and validated.
func (c *Coordinates) UnmarshalJSON(data []byte) error {
	var raw coordinatesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}

	coords, err := NewCoordinates(*raw.Latitude, *raw.Longitude)
	if err != nil {
		return err
	}
	*c = coords
	return nil
}
