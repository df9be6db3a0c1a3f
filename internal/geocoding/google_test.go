package geocoding_test

import (
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/perimeter/internal/geocoding"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"
)

func TestReverseGeocode(t *testing.T) {
	mockClient := mocks.NewGoogleAPIClient(t)
	provider := geocoding.NewGoogleProvider(mockClient, slog.Default())
	ctx := t.Context()
	point := models.MustCoordinates(37.42, -122.08)
	req := &maps.GeocodingRequest{LatLng: &maps.LatLng{Lat: 37.42, Lng: -122.08}}

	t.Run("api returns error", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, assert.AnError).Once()

		_, err := provider.ReverseGeocode(ctx, point)

		require.Error(t, err)
		require.ErrorIs(t, err, assert.AnError)
		mockClient.AssertExpectations(t)
	})

	t.Run("api return empty response", func(t *testing.T) {
		mockClient.On("ReverseGeocode", ctx, req).Return(nil, nil).Once()

		place, err := provider.ReverseGeocode(ctx, point)

		require.Nil(t, place)
		require.ErrorIs(t, err, geocoding.ErrEmptyResponse)
		mockClient.AssertExpectations(t)
	})

	t.Run("successfull reverse geocoding", func(t *testing.T) {
		mockReponse := []maps.GeocodingResult{{
			FormattedAddress: "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA",
			Types:            []string{"street_address"},
			AddressComponents: []maps.AddressComponent{
				{LongName: "1600", Types: []string{"street_number"}},
				{LongName: "Mountain View", Types: []string{"locality", "political"}},
			},
		}}

		mockClient.On("ReverseGeocode", ctx, req).Return(mockReponse, nil).Once()

		place, err := provider.ReverseGeocode(ctx, point)

		require.NoError(t, err)
		require.NotNil(t, place)
		assert.Equal(t, "1600 Amphitheatre Pkwy, Mountain View, CA 94043, USA", place.DisplayName)
		assert.Equal(t, "street_address", place.Type)
		assert.Equal(t, "Mountain View", place.Address["locality"])
		assert.Equal(t, "1600", place.Address["street_number"])
		mockClient.AssertExpectations(t)
	})
}
