// Package service evaluates user positions against building geofences.
package service

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/geo"
	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/spatial"
)

// Mode selects where candidate buildings come from.
type Mode string

const (
	// ModeDirectory evaluates predefined buildings against their own radii.
	ModeDirectory Mode = "directory"
	// ModeDiscovery evaluates buildings found by the spatial provider against one shared radius.
	ModeDiscovery Mode = "discovery"
)

// ParseMode converts s to a Mode. The empty string is ModeDirectory.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeDirectory:
		return ModeDirectory, nil
	case ModeDiscovery:
		return ModeDiscovery, nil
	default:
		return "", fmt.Errorf("%w: unknown evaluation mode %q", models.ErrValidation, s)
	}
}

// CheckOptions parameterises a single geofence check.
type CheckOptions struct {
	Mode               Mode    // zero value means ModeDirectory
	BuildingID         string  // directory mode: restrict to this building
	SearchRadiusMeters float64 // discovery mode: zero means the configured default
}

// Settings holds evaluator defaults.
type Settings struct {
	DefaultRadiusMeters float64
	MaxBuildings        int
	DiscoveryBuffer     float64
}

// Buildings is the read side of the building directory.
type Buildings interface {
	Get(id string) (models.PredefinedBuilding, bool)
	List() []models.PredefinedBuilding
}

// Evaluator answers geofence checks for a user position.
type Evaluator struct {
	log       *slog.Logger     // Logger for logging evaluations
	buildings Buildings        // Predefined buildings
	provider  spatial.Provider // Discovery of nearby buildings
	metrics   *metrics.Metrics // Metrics for tracking checks
	settings  Settings
	now       func() time.Time
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(
	log *slog.Logger,
	buildings Buildings,
	provider spatial.Provider,
	metrics *metrics.Metrics,
	settings Settings,
) *Evaluator {
	return &Evaluator{
		log:       log,
		buildings: buildings,
		provider:  provider,
		metrics:   metrics,
		settings:  settings,
		now:       time.Now,
	}
}

// CheckGeofence tests user against the candidate buildings selected by opts.
// Only validation errors are returned; provider failures produce an empty result.
func (ev *Evaluator) CheckGeofence(
	ctx context.Context,
	user models.Coordinates,
	opts CheckOptions,
) (*models.GeofenceResponse, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeDirectory
	}

	start := time.Now()
	var (
		response *models.GeofenceResponse
		err      error
	)
	switch mode {
	case ModeDirectory:
		response = ev.checkDirectory(user, opts.BuildingID)
	case ModeDiscovery:
		response, err = ev.checkDiscovery(ctx, user, opts.SearchRadiusMeters)
	default:
		err = fmt.Errorf("%w: unknown evaluation mode %q", models.ErrValidation, mode)
	}
	if err != nil {
		return nil, err
	}

	ev.metrics.ChecksTotal.WithLabelValues(string(mode)).Inc()
	ev.metrics.CheckSeconds.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	ev.metrics.BuildingsEvaluated.WithLabelValues(string(mode)).Observe(float64(len(response.Buildings)))

	ev.log.InfoContext(ctx, "Geofence check completed",
		"mode", mode,
		"user", user.String(),
		"radius", response.RadiusMeters,
		"evaluated", len(response.Buildings),
		"within", response.WithinCount(),
	)

	return response, nil
}

func (ev *Evaluator) checkDirectory(user models.Coordinates, buildingID string) *models.GeofenceResponse {
	var candidates []models.PredefinedBuilding
	if buildingID != "" {
		if building, ok := ev.buildings.Get(buildingID); ok {
			candidates = append(candidates, building)
		}
	} else {
		candidates = ev.buildings.List()
	}

	timestamp := ev.now()
	statuses := make([]models.GeofenceStatus, 0, len(candidates))
	radius := math.Inf(-1)
	for _, building := range candidates {
		statuses = append(statuses, evaluate(user, building, building.GeofenceRadiusMeters, timestamp))
		radius = max(radius, building.GeofenceRadiusMeters)
	}
	if len(candidates) == 0 {
		radius = ev.settings.DefaultRadiusMeters
	}

	return newResponse(user, radius, timestamp, statuses)
}

func (ev *Evaluator) checkDiscovery(
	ctx context.Context,
	user models.Coordinates,
	searchRadius float64,
) (*models.GeofenceResponse, error) {
	radius := searchRadius
	if radius == 0 {
		radius = ev.settings.DefaultRadiusMeters
	}
	if math.IsNaN(radius) || radius <= 0 {
		return nil, fmt.Errorf("%w: search radius must be positive, got %v", models.ErrValidation, searchRadius)
	}

	resolution := ev.provider.NearbyBuildings(ctx, user, radius*ev.settings.DiscoveryBuffer, ev.settings.MaxBuildings)
	if resolution.Strategy == spatial.StrategyDegraded {
		ev.log.WarnContext(ctx, "Discovery degraded, no candidate buildings", "user", user.String(), "radius", radius)
	}

	timestamp := ev.now()
	statuses := make([]models.GeofenceStatus, 0, len(resolution.Buildings))
	for _, building := range resolution.Buildings {
		statuses = append(statuses, evaluate(user, building, radius, timestamp))
	}

	return newResponse(user, radius, timestamp, statuses), nil
}

func evaluate(user models.Coordinates, building models.Building, radius float64, at time.Time) models.GeofenceStatus {
	distance := geo.HaversineDistance(user, building.Position())
	return models.GeofenceStatus{
		IsWithinGeofence: distance <= radius,
		DistanceMeters:   distance,
		Building:         building,
		Timestamp:        at,
	}
}

func newResponse(
	user models.Coordinates,
	radius float64,
	timestamp time.Time,
	statuses []models.GeofenceStatus,
) *models.GeofenceResponse {
	slices.SortStableFunc(statuses, func(a, b models.GeofenceStatus) int {
		return cmp.Compare(a.DistanceMeters, b.DistanceMeters)
	})
	return &models.GeofenceResponse{
		UserCoordinates: user,
		RadiusMeters:    radius,
		Timestamp:       timestamp,
		Buildings:       statuses,
	}
}
