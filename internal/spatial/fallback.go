package spatial

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/geo"
	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
)

// BoundingBoxOverFetch is how many times the requested limit the bounding-box
// query asks for, since a box admits features a circle would not.
const BoundingBoxOverFetch = 3

// FallbackProvider resolves nearby buildings with a radius query and, only if
// that request fails, a single bounding-box attempt (two requests when the box
// crosses the antimeridian). When both fail it returns an empty
// StrategyDegraded resolution.
type FallbackProvider struct {
	source  FeatureSource    // upstream spatial-feature service
	timeout time.Duration    // per-request timeout
	log     *slog.Logger     // Logger for logging operations
	metrics *metrics.Metrics // Metrics for tracking upstream requests
}

// NewFallbackProvider creates a FallbackProvider. A non-positive timeout disables
// the per-request deadline.
func NewFallbackProvider(
	source FeatureSource,
	timeout time.Duration,
	log *slog.Logger,
	metrics *metrics.Metrics,
) *FallbackProvider {
	return &FallbackProvider{source: source, timeout: timeout, log: log, metrics: metrics}
}

type verifiedBuilding struct {
	building models.DiscoveredBuilding
	distance float64
}

// NearbyBuildings implements Provider.
func (fp *FallbackProvider) NearbyBuildings(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) Resolution {
	if radiusMeters <= 0 || limit <= 0 {
		return fp.resolved(StrategyPrimary, []models.DiscoveredBuilding{})
	}

	buildings, err := fp.primary(ctx, center, radiusMeters, limit)
	if err == nil {
		return fp.resolved(StrategyPrimary, buildings)
	}
	fp.log.WarnContext(ctx, "Radius query failed, falling back to bounding box",
		"center", center.String(), "radius", radiusMeters, "error", err)

	buildings, err = fp.fallback(ctx, center, radiusMeters, limit)
	if err == nil {
		return fp.resolved(StrategyFallback, buildings)
	}
	fp.log.ErrorContext(ctx, "Bounding box query failed, returning no candidates",
		"center", center.String(), "radius", radiusMeters, "error", err)

	return fp.resolved(StrategyDegraded, []models.DiscoveredBuilding{})
}

func (fp *FallbackProvider) primary(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) ([]models.DiscoveredBuilding, error) {
	ctx, cancel := fp.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	features, err := fp.source.FeaturesAround(ctx, center, radiusMeters, limit)
	fp.observe(StrategyPrimary, start, err)
	if err != nil {
		return nil, err
	}

	return fp.verify(ctx, features, center, radiusMeters, limit), nil
}

func (fp *FallbackProvider) fallback(
	ctx context.Context,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) ([]models.DiscoveredBuilding, error) {
	ctx, cancel := fp.withTimeout(ctx)
	defer cancel()

	// Near the antimeridian the box is split in two; both halves must answer.
	var features []Feature
	seen := make(map[string]struct{})
	for _, bound := range geo.BoundingBoxes(center, radiusMeters) {
		start := time.Now()
		part, err := fp.source.FeaturesInBounds(ctx, bound, limit*BoundingBoxOverFetch)
		fp.observe(StrategyFallback, start, err)
		if err != nil {
			return nil, err
		}
		for _, feature := range part {
			key := feature.Kind + "/" + feature.ExternalID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			features = append(features, feature)
		}
	}

	return fp.verify(ctx, features, center, radiusMeters, limit), nil
}

// verify keeps the features whose exact distance from center is within
// radiusMeters, nearest first, and only then truncates to limit.
func (fp *FallbackProvider) verify(
	ctx context.Context,
	features []Feature,
	center models.Coordinates,
	radiusMeters float64,
	limit int,
) []models.DiscoveredBuilding {
	verified := make([]verifiedBuilding, 0, len(features))
	for _, feature := range features {
		if feature.Point == nil {
			fp.log.DebugContext(ctx, "Skipping feature without a point", "kind", feature.Kind, "id", feature.ExternalID)
			continue
		}
		distance := geo.HaversineDistance(center, *feature.Point)
		if distance > radiusMeters {
			continue
		}
		verified = append(verified, verifiedBuilding{
			building: toDiscoveredBuilding(feature, radiusMeters),
			distance: distance,
		})
	}

	slices.SortStableFunc(verified, func(a, b verifiedBuilding) int {
		return cmp.Compare(a.distance, b.distance)
	})
	if len(verified) > limit {
		verified = verified[:limit]
	}

	fp.log.DebugContext(ctx, "Verified features against radius",
		"received", len(features), "accepted", len(verified), "radius", radiusMeters)

	buildings := make([]models.DiscoveredBuilding, 0, len(verified))
	for _, v := range verified {
		buildings = append(buildings, v.building)
	}
	return buildings
}

func (fp *FallbackProvider) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if fp.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, fp.timeout)
}

func (fp *FallbackProvider) observe(strategy Strategy, start time.Time, err error) {
	fp.metrics.ProviderRequestSeconds.WithLabelValues(string(strategy)).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "failure"
	}
	fp.metrics.ProviderRequests.WithLabelValues(string(strategy), status).Inc()
}

func (fp *FallbackProvider) resolved(strategy Strategy, buildings []models.DiscoveredBuilding) Resolution {
	fp.metrics.ProviderResolutions.WithLabelValues(string(strategy)).Inc()
	return Resolution{Buildings: buildings, Strategy: strategy}
}

func toDiscoveredBuilding(feature Feature, radiusMeters float64) models.DiscoveredBuilding {
	return models.DiscoveredBuilding{
		ID:                 feature.Kind + "/" + feature.ExternalID,
		Name:               feature.Name,
		Coordinates:        *feature.Point,
		Address:            feature.Address,
		Category:           feature.Category,
		SearchRadiusMeters: radiusMeters,
		Metadata:           feature.Tags,
	}
}
