package directory

import "github.com/UnknownOlympus/perimeter/internal/models"

// ExampleBuildings returns the demo buildings a fresh directory can be seeded with.
func ExampleBuildings() []NewBuilding {
	return []NewBuilding{
		{
			Name:                 "Company Headquarters",
			Coordinates:          models.MustCoordinates(40.7128, -74.0060),
			Address:              "123 Business St, New York, NY",
			Category:             "office",
			GeofenceRadiusMeters: 100,
		},
		{
			Name:                 "Shopping Mall",
			Coordinates:          models.MustCoordinates(40.7580, -73.9855),
			Address:              "456 Retail Ave, New York, NY",
			Category:             "commercial",
			GeofenceRadiusMeters: 150,
		},
		{
			Name:                 "Allied Worldwide Bengaluru",
			Coordinates:          models.MustCoordinates(12.967549, 77.603994),
			Address:              "First Floor, Le Parc Richmonde",
			Category:             "office",
			GeofenceRadiusMeters: 200,
		},
	}
}
