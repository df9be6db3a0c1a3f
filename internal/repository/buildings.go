package repository

import (
	"context"
	"fmt"

	"github.com/UnknownOlympus/perimeter/internal/models"
)

// FetchBuildings reads predefined buildings used to seed the in-memory directory.
// Rows with out-of-range coordinates or radius are logged and skipped, so one bad
// record does not block startup. The table is never written to.
func (r *Repository) FetchBuildings(ctx context.Context, limit int) ([]models.PredefinedBuilding, error) {
	buildings := make([]models.PredefinedBuilding, 0)
	query := `
		SELECT id, name, latitude, longitude,
			COALESCE(address, ''), COALESCE(category, ''), geofence_radius_meters
		FROM public.buildings
		ORDER BY created_at ASC
		LIMIT $1;
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query buildings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			building            models.PredefinedBuilding
			latitude, longitude float64
		)
		if errScan := rows.Scan(
			&building.ID, &building.Name, &latitude, &longitude,
			&building.Address, &building.Category, &building.GeofenceRadiusMeters,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan building: %w", errScan)
		}

		coordinates, errCoords := models.NewCoordinates(latitude, longitude)
		if errCoords != nil {
			r.log.WarnContext(ctx, "Skipping building with invalid coordinates",
				"id", building.ID, "error", errCoords)
			continue
		}
		if errRadius := models.ValidateGeofenceRadius(building.GeofenceRadiusMeters); errRadius != nil {
			r.log.WarnContext(ctx, "Skipping building with invalid geofence radius",
				"id", building.ID, "error", errRadius)
			continue
		}
		building.Coordinates = coordinates

		r.log.DebugContext(ctx, "Loaded building from database", "id", building.ID, "name", building.Name)
		buildings = append(buildings, building)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return buildings, nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("database is unreachable: %w", err)
	}
	return nil
}
