package directory_test

import (
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/UnknownOlympus/perimeter/internal/directory"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newHeadquarters() directory.NewBuilding {
	return directory.NewBuilding{
		Name:                 "Company Headquarters",
		Coordinates:          models.MustCoordinates(40.7128, -74.0060),
		Address:              "123 Business St, New York, NY",
		Category:             "office",
		GeofenceRadiusMeters: 100,
		Metadata:             map[string]any{"floors": 12},
	}
}

func TestDirectory_Create(t *testing.T) {
	t.Parallel()
	logger := slog.Default()

	t.Run("radius out of range", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		input := newHeadquarters()
		input.GeofenceRadiusMeters = 1500

		_, err := dir.Create(input)

		require.ErrorIs(t, err, models.ErrValidation)
		assert.Zero(t, dir.Len())
	})

	t.Run("radius at upper bound", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		input := newHeadquarters()
		input.GeofenceRadiusMeters = 1000

		building, err := dir.Create(input)

		require.NoError(t, err)
		assert.NotEmpty(t, building.ID)
		assert.InDelta(t, 1000.0, building.GeofenceRadiusMeters, 0)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		input := newHeadquarters()
		input.Name = "  "

		_, err := dir.Create(input)

		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("ids are unique", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)

		first, err := dir.Create(newHeadquarters())
		require.NoError(t, err)
		second, err := dir.Create(newHeadquarters())
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})
}

func TestDirectory_GetAndList(t *testing.T) {
	t.Parallel()
	dir := directory.New(slog.Default())

	var ids []string
	for _, input := range directory.ExampleBuildings() {
		building, err := dir.Create(input)
		require.NoError(t, err)
		ids = append(ids, building.ID)
	}

	listed := dir.List()
	require.Len(t, listed, 3)
	for i, building := range listed {
		assert.Equal(t, ids[i], building.ID, "list keeps insertion order")
	}

	got, ok := dir.Get(ids[1])
	require.True(t, ok)
	assert.Equal(t, "Shopping Mall", got.Name)

	_, ok = dir.Get("missing")
	assert.False(t, ok)
}

func TestDirectory_ReturnsCopies(t *testing.T) {
	t.Parallel()
	dir := directory.New(slog.Default())
	created, err := dir.Create(newHeadquarters())
	require.NoError(t, err)

	created.Metadata["floors"] = 99
	got, _ := dir.Get(created.ID)
	got.Metadata["floors"] = 42

	again, _ := dir.Get(created.ID)
	assert.Equal(t, 12, again.Metadata["floors"])
}

func TestDirectory_Update(t *testing.T) {
	t.Parallel()
	logger := slog.Default()

	t.Run("name only leaves the rest unchanged", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		created, err := dir.Create(newHeadquarters())
		require.NoError(t, err)

		updated, ok, err := dir.Update(created.ID, directory.BuildingUpdate{Name: ptr("X")})

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "X", updated.Name)
		assert.Equal(t, created.Coordinates, updated.Coordinates)
		assert.InDelta(t, created.GeofenceRadiusMeters, updated.GeofenceRadiusMeters, 0)
		assert.Equal(t, created.Address, updated.Address)
		assert.Equal(t, created.Metadata, updated.Metadata)
	})

	t.Run("single axis keeps the other", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		created, err := dir.Create(newHeadquarters())
		require.NoError(t, err)

		updated, ok, err := dir.Update(created.ID, directory.BuildingUpdate{Latitude: ptr(41.0000004)})

		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, 41.0, updated.Coordinates.Latitude())
		assert.Equal(t, -74.006, updated.Coordinates.Longitude())
	})

	t.Run("invalid combined coordinates leave record untouched", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		created, err := dir.Create(newHeadquarters())
		require.NoError(t, err)

		_, ok, err := dir.Update(created.ID, directory.BuildingUpdate{
			Name:      ptr("renamed"),
			Longitude: ptr(181.0),
		})

		require.True(t, ok)
		require.ErrorIs(t, err, models.ErrValidation)
		stored, _ := dir.Get(created.ID)
		assert.Equal(t, created, stored)
	})

	t.Run("invalid radius rejected", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)
		created, err := dir.Create(newHeadquarters())
		require.NoError(t, err)

		_, ok, err := dir.Update(created.ID, directory.BuildingUpdate{GeofenceRadiusMeters: ptr(0.0)})

		require.True(t, ok)
		require.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("unknown id is absent, not an error", func(t *testing.T) {
		t.Parallel()
		dir := directory.New(logger)

		_, ok, err := dir.Update("missing", directory.BuildingUpdate{Name: ptr("X")})

		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDirectory_Delete(t *testing.T) {
	t.Parallel()
	dir := directory.New(slog.Default())
	first, err := dir.Create(newHeadquarters())
	require.NoError(t, err)
	second, err := dir.Create(newHeadquarters())
	require.NoError(t, err)

	assert.True(t, dir.Delete(first.ID))
	assert.False(t, dir.Delete(first.ID))

	listed := dir.List()
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)
}

func TestDirectory_Import(t *testing.T) {
	t.Parallel()
	dir := directory.New(slog.Default())
	building := models.PredefinedBuilding{
		ID:                   "office-7",
		Name:                 "Office",
		Coordinates:          models.MustCoordinates(1, 2),
		GeofenceRadiusMeters: 50,
	}

	require.NoError(t, dir.Import(building))
	require.ErrorIs(t, dir.Import(building), directory.ErrDuplicateID)

	building.ID = ""
	require.ErrorIs(t, dir.Import(building), models.ErrValidation)

	building.ID = "office-8"
	building.GeofenceRadiusMeters = 5000
	require.ErrorIs(t, dir.Import(building), models.ErrValidation)

	got, ok := dir.Get("office-7")
	require.True(t, ok)
	assert.Equal(t, "Office", got.Name)

	require.True(t, dir.Delete("office-7"))
	building.ID = "office-7"
	building.GeofenceRadiusMeters = 50
	require.ErrorIs(t, dir.Import(building), directory.ErrDeletedID)
	_, ok = dir.Get("office-7")
	assert.False(t, ok)
}

func TestDirectory_ConcurrentAccess(t *testing.T) {
	t.Parallel()
	dir := directory.New(slog.New(slog.DiscardHandler))

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			input := newHeadquarters()
			input.Name = fmt.Sprintf("building-%d", i)
			created, err := dir.Create(input)
			assert.NoError(t, err)
			_, _, err = dir.Update(created.ID, directory.BuildingUpdate{Category: ptr("lab")})
			assert.NoError(t, err)
			_ = dir.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, dir.Len())
}
