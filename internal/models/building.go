package models

import (
	"fmt"
	"maps"
	"math"
)

// Geofence radius bounds for predefined buildings, in meters.
const (
	MinGeofenceRadiusMeters = 1.0
	MaxGeofenceRadiusMeters = 1000.0
)

// Building is anything the evaluator can locate and test against a radius.
type Building interface {
	BuildingID() string    // Unique identifier of the building.
	Position() Coordinates // Representative point of the building.
	RadiusMeters() float64 // Radius the building is evaluated against.
}

// PredefinedBuilding is a building owned by the directory with its own geofence radius.
type PredefinedBuilding struct {
	ID                   string         `json:"id"`
	Name                 string         `json:"name"`
	Coordinates          Coordinates    `json:"coordinates"`
	Address              string         `json:"address,omitempty"`
	Category             string         `json:"category,omitempty"`
	GeofenceRadiusMeters float64        `json:"geofence_radius_meters"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

func (b PredefinedBuilding) BuildingID() string    { return b.ID }
func (b PredefinedBuilding) Position() Coordinates { return b.Coordinates }
func (b PredefinedBuilding) RadiusMeters() float64 { return b.GeofenceRadiusMeters }

// Clone returns a copy that does not share the metadata map.
func (b PredefinedBuilding) Clone() PredefinedBuilding {
	if b.Metadata != nil {
		b.Metadata = maps.Clone(b.Metadata)
	}
	return b
}

// DiscoveredBuilding is synthesized per query from an external spatial feature.
// Its radius is the caller's shared search radius.
type DiscoveredBuilding struct {
	ID                 string            `json:"id"` // "<kind>/<external-id>", e.g. "way/123"
	Name               string            `json:"name,omitempty"`
	Coordinates        Coordinates       `json:"coordinates"`
	Address            string            `json:"address,omitempty"`
	Category           string            `json:"category,omitempty"`
	SearchRadiusMeters float64           `json:"search_radius_meters"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

func (b DiscoveredBuilding) BuildingID() string    { return b.ID }
func (b DiscoveredBuilding) Position() Coordinates { return b.Coordinates }
func (b DiscoveredBuilding) RadiusMeters() float64 { return b.SearchRadiusMeters }

// ValidateGeofenceRadius checks that radius lies in [MinGeofenceRadiusMeters, MaxGeofenceRadiusMeters].
func ValidateGeofenceRadius(radius float64) error {
	if math.IsNaN(radius) || radius < MinGeofenceRadiusMeters || radius > MaxGeofenceRadiusMeters {
		return fmt.Errorf("%w: geofence radius must be between %.0f and %.0f meters, got %v",
			ErrValidation, MinGeofenceRadiusMeters, MaxGeofenceRadiusMeters, radius)
	}
	return nil
}
