// Package directory keeps the predefined buildings known to the process.
package directory

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrDuplicateID is returned by Import when the id is already present.
	ErrDuplicateID = errors.New("building id already exists")
	// ErrDeletedID is returned by Import when the id was deleted earlier in
	// the life of the process.
	ErrDeletedID = errors.New("building id was deleted")
)

// NewBuilding holds the fields for creating a predefined building.
type NewBuilding struct {
	Name                 string
	Coordinates          models.Coordinates
	Address              string
	Category             string
	GeofenceRadiusMeters float64
	Metadata             map[string]any
}

// BuildingUpdate holds a partial update. Nil fields are left unchanged.
type BuildingUpdate struct {
	Name                 *string
	Latitude             *float64
	Longitude            *float64
	Address              *string
	Category             *string
	GeofenceRadiusMeters *float64
	Metadata             map[string]any
}

// Directory is an in-memory, concurrency-safe store of predefined buildings.
// Each method runs in a single critical section.
type Directory struct {
	mu        sync.RWMutex
	buildings map[string]models.PredefinedBuilding
	order     []string            // ids in insertion order
	deleted   map[string]struct{} // ids removed by Delete, never re-imported
	log       *slog.Logger
}

// New creates an empty Directory.
func New(log *slog.Logger) *Directory {
	return &Directory{
		buildings: make(map[string]models.PredefinedBuilding),
		deleted:   make(map[string]struct{}),
		log:       log,
	}
}

// Create validates the input, assigns a fresh id and stores the building.
func (d *Directory) Create(input NewBuilding) (models.PredefinedBuilding, error) {
	building := models.PredefinedBuilding{
		ID:                   uuid.NewString(),
		Name:                 input.Name,
		Coordinates:          input.Coordinates,
		Address:              input.Address,
		Category:             input.Category,
		GeofenceRadiusMeters: input.GeofenceRadiusMeters,
		Metadata:             maps.Clone(input.Metadata),
	}
	if err := validate(building); err != nil {
		return models.PredefinedBuilding{}, err
	}

	d.mu.Lock()
	d.insert(building)
	d.mu.Unlock()

	d.log.Info("Created building",
		"id", building.ID,
		"name", building.Name,
		"coordinates", building.Coordinates.String(),
		"radius", building.GeofenceRadiusMeters)

	return building.Clone(), nil
}

// Import stores a building keeping its id. It is used to seed the directory
// from an external source. Ids removed with Delete stay removed.
func (d *Directory) Import(building models.PredefinedBuilding) error {
	if strings.TrimSpace(building.ID) == "" {
		return fmt.Errorf("%w: building id is required", models.ErrValidation)
	}
	if err := validate(building); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.buildings[building.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, building.ID)
	}
	if _, gone := d.deleted[building.ID]; gone {
		return fmt.Errorf("%w: %s", ErrDeletedID, building.ID)
	}
	d.insert(building.Clone())

	return nil
}

// Get returns the building with the given id.
func (d *Directory) Get(id string) (models.PredefinedBuilding, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	building, ok := d.buildings[id]
	if !ok {
		return models.PredefinedBuilding{}, false
	}
	return building.Clone(), true
}

// List returns every building in insertion order.
func (d *Directory) List() []models.PredefinedBuilding {
	d.mu.RLock()
	defer d.mu.RUnlock()

	buildings := make([]models.PredefinedBuilding, 0, len(d.order))
	for _, id := range d.order {
		buildings = append(buildings, d.buildings[id].Clone())
	}
	return buildings
}

// Len returns the number of stored buildings.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// Update applies a partial update. It returns false when the id is unknown.
// A lone latitude or longitude is recombined with the stored other axis and
// the pair is validated again; on any validation error nothing is changed.
func (d *Directory) Update(id string, update BuildingUpdate) (models.PredefinedBuilding, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	building, ok := d.buildings[id]
	if !ok {
		d.log.Warn("Attempted to update non-existent building", "id", id)
		return models.PredefinedBuilding{}, false, nil
	}
	building = building.Clone()

	if update.Latitude != nil || update.Longitude != nil {
		lat, lon := building.Coordinates.Latitude(), building.Coordinates.Longitude()
		if update.Latitude != nil {
			lat = *update.Latitude
		}
		if update.Longitude != nil {
			lon = *update.Longitude
		}
		coords, err := models.NewCoordinates(lat, lon)
		if err != nil {
			return models.PredefinedBuilding{}, true, err
		}
		building.Coordinates = coords
	}
	if update.Name != nil {
		building.Name = *update.Name
	}
	if update.Address != nil {
		building.Address = *update.Address
	}
	if update.Category != nil {
		building.Category = *update.Category
	}
	if update.GeofenceRadiusMeters != nil {
		building.GeofenceRadiusMeters = *update.GeofenceRadiusMeters
	}
	if update.Metadata != nil {
		building.Metadata = maps.Clone(update.Metadata)
	}

	if err := validate(building); err != nil {
		return models.PredefinedBuilding{}, true, err
	}
	d.buildings[id] = building

	d.log.Info("Updated building",
		"id", building.ID,
		"name", building.Name,
		"coordinates", building.Coordinates.String(),
		"radius", building.GeofenceRadiusMeters)

	return building.Clone(), true, nil
}

// Delete removes the building and reports whether it existed.
func (d *Directory) Delete(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.buildings[id]; !ok {
		d.log.Warn("Attempted to delete non-existent building", "id", id)
		return false
	}
	delete(d.buildings, id)
	d.deleted[id] = struct{}{}
	d.order = slices.DeleteFunc(d.order, func(other string) bool { return other == id })

	d.log.Info("Deleted building", "id", id)
	return true
}

// insert must be called with the write lock held.
func (d *Directory) insert(building models.PredefinedBuilding) {
	d.buildings[building.ID] = building
	d.order = append(d.order, building.ID)
}

func validate(building models.PredefinedBuilding) error {
	if strings.TrimSpace(building.Name) == "" {
		return fmt.Errorf("%w: building name is required", models.ErrValidation)
	}
	return models.ValidateGeofenceRadius(building.GeofenceRadiusMeters)
}
