// Package spatial resolves buildings near a point through an external
// spatial-feature service, with a radius query backed by a bounding-box fallback.
package spatial

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/paulmach/orb"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Feature is a single map feature returned by the spatial service.
type Feature struct {
	Kind       string              // Feature kind, e.g. "way", "node", "place".
	ExternalID string              // Identifier in the upstream service.
	Name       string              // Display name, if tagged.
	Address    string              // Postal address, if tagged.
	Category   string              // Building category, if tagged.
	Point      *models.Coordinates // Representative point; nil when none could be derived.
	Tags       map[string]string   // Raw upstream tags.
}

// FeatureSource is an external service able to list building features
// around a point and inside a bounding box.
type FeatureSource interface {
	FeaturesAround(ctx context.Context, center models.Coordinates, radiusMeters float64, limit int) ([]Feature, error)
	FeaturesInBounds(ctx context.Context, bound orb.Bound, limit int) ([]Feature, error)
}

// Strategy names the step of the resolution pipeline that produced a result.
type Strategy string

const (
	StrategyPrimary  Strategy = "primary"  // radius query succeeded
	StrategyFallback Strategy = "fallback" // bounding-box query succeeded after a primary failure
	StrategyDegraded Strategy = "degraded" // both queries failed, no candidates
	StrategyCache    Strategy = "cache"    // served from the discovery cache
)

// Resolution is the outcome of a nearby-building lookup. It never carries an
// error: upstream failures collapse into StrategyDegraded with no buildings.
type Resolution struct {
	Buildings []models.DiscoveredBuilding
	Strategy  Strategy
}

// Provider returns discovered buildings within radiusMeters of center,
// at most limit of them.
type Provider interface {
	NearbyBuildings(ctx context.Context, center models.Coordinates, radiusMeters float64, limit int) Resolution
}
