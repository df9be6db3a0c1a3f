package geocoding

import (
	"context"

	"github.com/UnknownOlympus/perimeter/internal/models"
)

// Place is what a reverse geocoder knows about a point.
type Place struct {
	DisplayName string            `json:"display_name"`       // Full human-readable address
	Category    string            `json:"category,omitempty"` // Feature class, e.g. "building"
	Type        string            `json:"type,omitempty"`     // Feature type, e.g. "office"
	Address     map[string]string `json:"address,omitempty"`  // Address components by name
}

// Provider is an interface that defines a method for reverse geocoding a point.
// The ReverseGeocode method takes a context and coordinates as input,
// and returns the place found there and an error if any occurs.
type Provider interface {
	ReverseGeocode(ctx context.Context, coordinates models.Coordinates) (*Place, error)
}
