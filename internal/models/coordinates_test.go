package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoordinates(t *testing.T) {
	t.Parallel()

	t.Run("rounds to six decimals", func(t *testing.T) {
		t.Parallel()
		coords, err := models.NewCoordinates(12.9660000317, 77.6039941234)

		require.NoError(t, err)
		assert.Equal(t, 12.966, coords.Latitude())
		assert.Equal(t, 77.603994, coords.Longitude())
	})

	t.Run("accepts bounds", func(t *testing.T) {
		t.Parallel()
		_, err := models.NewCoordinates(90, 180)
		require.NoError(t, err)
		_, err = models.NewCoordinates(-90, -180)
		require.NoError(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name     string
			lat, lon float64
			contains string
		}{
			{"latitude 91", 91, 0, "latitude"},
			{"latitude -90.5", -90.5, 0, "latitude"},
			{"longitude 181", 0, 181, "longitude"},
			{"longitude -180.1", 0, -180.1, "longitude"},
			{"latitude NaN", math.NaN(), 0, "latitude"},
			{"longitude NaN", 0, math.NaN(), "longitude"},
		}
		for _, tc := range cases {
			_, err := models.NewCoordinates(tc.lat, tc.lon)
			require.Error(t, err, tc.name)
			require.ErrorIs(t, err, models.ErrValidation, tc.name)
			assert.ErrorContains(t, err, tc.contains, tc.name)
		}
	})
}

func TestCoordinates_WithAxis(t *testing.T) {
	t.Parallel()
	base := models.MustCoordinates(40.7128, -74.0060)

	moved, err := base.WithLatitude(41.1234567)
	require.NoError(t, err)
	assert.Equal(t, 41.123457, moved.Latitude())
	assert.Equal(t, -74.006, moved.Longitude())

	_, err = base.WithLongitude(200)
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, -74.006, base.Longitude(), "original value must not change")
}

func TestCoordinates_JSON(t *testing.T) {
	t.Parallel()

	t.Run("marshal", func(t *testing.T) {
		t.Parallel()
		data, err := json.Marshal(models.MustCoordinates(40.7128, -74.006))
		require.NoError(t, err)
		assert.JSONEq(t, `{"latitude":40.7128,"longitude":-74.006}`, string(data))
	})

	t.Run("unmarshal validates and rounds", func(t *testing.T) {
		t.Parallel()
		var coords models.Coordinates
		require.NoError(t, json.Unmarshal([]byte(`{"latitude":12.9660000317,"longitude":1}`), &coords))
		assert.Equal(t, 12.966, coords.Latitude())

		err := json.Unmarshal([]byte(`{"latitude":91,"longitude":1}`), &coords)
		require.ErrorIs(t, err, models.ErrValidation)

		err = json.Unmarshal([]byte(`{"latitude":10}`), &coords)
		require.ErrorIs(t, err, models.ErrValidation)
	})
}
