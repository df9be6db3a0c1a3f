package spatial_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/perimeter/internal/geo"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/spatial"
	"github.com/UnknownOlympus/perimeter/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func place(id string, lat, lng float64, types ...string) maps.PlacesSearchResult {
	return maps.PlacesSearchResult{
		PlaceID:  id,
		Name:     "Place " + id,
		Vicinity: "Somewhere " + id,
		Types:    types,
		Geometry: maps.AddressGeometry{Location: maps.LatLng{Lat: lat, Lng: lng}},
	}
}

func TestGooglePlacesSource_FeaturesAround(t *testing.T) {
	ctx := t.Context()
	center := models.MustCoordinates(40.7128, -74.0060)

	t.Run("successful search", func(t *testing.T) {
		client := mocks.NewGooglePlacesClient(t)
		client.On("NearbySearch", ctx, mock.MatchedBy(func(r *maps.NearbySearchRequest) bool {
			return r.Radius == 121 && r.Keyword == "building" &&
				r.Location.Lat == 40.7128 && r.Location.Lng == -74.006
		})).Return(maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{
			place("p1", 40.7129, -74.0061, "city_hall", "point_of_interest"),
			place("p2", 40.713, -74.006),
			place("p3", 40.714, -74.006),
		}}, nil).Once()

		source := spatial.NewGooglePlacesSource(client, slog.Default())
		features, err := source.FeaturesAround(ctx, center, 120.4, 2)

		require.NoError(t, err)
		require.Len(t, features, 2)
		assert.Equal(t, "place", features[0].Kind)
		assert.Equal(t, "p1", features[0].ExternalID)
		assert.Equal(t, "Place p1", features[0].Name)
		assert.Equal(t, "Somewhere p1", features[0].Address)
		assert.Equal(t, "city_hall", features[0].Category)
		assert.Equal(t, "city_hall,point_of_interest", features[0].Tags["types"])
		require.NotNil(t, features[0].Point)
		assert.InDelta(t, -74.0061, features[0].Point.Longitude(), 1e-9)
		assert.Empty(t, features[1].Category)
	})

	t.Run("radius is capped", func(t *testing.T) {
		client := mocks.NewGooglePlacesClient(t)
		client.On("NearbySearch", ctx, mock.MatchedBy(func(r *maps.NearbySearchRequest) bool {
			return r.Radius == 50000
		})).Return(maps.PlacesSearchResponse{}, nil).Once()

		source := spatial.NewGooglePlacesSource(client, slog.Default())
		features, err := source.FeaturesAround(ctx, center, 90000, 10)

		require.NoError(t, err)
		assert.Empty(t, features)
	})

	t.Run("API error", func(t *testing.T) {
		client := mocks.NewGooglePlacesClient(t)
		client.On("NearbySearch", ctx, mock.Anything).
			Return(maps.PlacesSearchResponse{}, assert.AnError).Once()

		source := spatial.NewGooglePlacesSource(client, slog.Default())
		features, err := source.FeaturesAround(ctx, center, 100, 10)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, features)
		assert.Contains(t, err.Error(), "failed to search nearby places")
	})
}

func TestGooglePlacesSource_FeaturesInBounds(t *testing.T) {
	ctx := t.Context()
	center := models.MustCoordinates(0, 0)
	bound := geo.BoundingBox(center, 1000)

	client := mocks.NewGooglePlacesClient(t)
	client.On("NearbySearch", ctx, mock.MatchedBy(func(r *maps.NearbySearchRequest) bool {
		// circle through the box corners, about 1000·√2 m
		return r.Location.Lat == 0 && r.Location.Lng == 0 && r.Radius > 1400 && r.Radius < 1420
	})).Return(maps.PlacesSearchResponse{Results: []maps.PlacesSearchResult{
		place("p1", 0.001, 0.001),
	}}, nil).Once()

	source := spatial.NewGooglePlacesSource(client, slog.Default())
	features, err := source.FeaturesInBounds(ctx, bound, 30)

	require.NoError(t, err)
	require.Len(t, features, 1)
	assert.Equal(t, "p1", features[0].ExternalID)
}
