package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/perimeter/internal/directory"
	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/repository"
)

// Importer is the write side of the building directory used by DirectorySync.
type Importer interface {
	Get(id string) (models.PredefinedBuilding, bool)
	Import(building models.PredefinedBuilding) error
	Len() int
}

// DirectorySync loads predefined buildings from the database into the
// in-memory directory. Buildings already in the directory are left as they are,
// and buildings deleted from the directory are not brought back.
type DirectorySync struct {
	log          *slog.Logger         // Logger for logging sync activities
	repo         repository.Interface // Read-only source of buildings
	dir          Importer             // Directory receiving the buildings
	metrics      *metrics.Metrics     // Metrics for directory size
	limit        int                  // Max rows fetched per poll
	pollInterval time.Duration        // Interval between polls, 0 for a single load
}

// NewDirectorySync creates a new instance of DirectorySync.
func NewDirectorySync(
	log *slog.Logger,
	repo repository.Interface,
	dir Importer,
	metrics *metrics.Metrics,
	limit int,
	pollInterval time.Duration,
) *DirectorySync {
	return &DirectorySync{
		log:          log,
		repo:         repo,
		dir:          dir,
		metrics:      metrics,
		limit:        limit,
		pollInterval: pollInterval,
	}
}

// Run polls the database every poll interval until ctx is cancelled.
// It returns immediately when no poll interval is set.
func (ds *DirectorySync) Run(ctx context.Context) {
	if ds.pollInterval <= 0 {
		return
	}

	ticker := time.NewTicker(ds.pollInterval)
	defer ticker.Stop()

	ds.log.InfoContext(ctx, "Directory sync started", "interval", ds.pollInterval)

	for {
		select {
		case <-ctx.Done():
			ds.log.InfoContext(ctx, "Directory sync stopped.")
			return
		case <-ticker.C:
			ds.Sync(ctx)
		}
	}
}

// Sync imports buildings not yet present in the directory and returns how many were added.
func (ds *DirectorySync) Sync(ctx context.Context) int {
	buildings, err := ds.repo.FetchBuildings(ctx, ds.limit)
	if err != nil {
		ds.log.ErrorContext(ctx, "Failed to fetch buildings", "error", err)
		return 0
	}

	added := 0
	for _, building := range buildings {
		if _, ok := ds.dir.Get(building.ID); ok {
			continue
		}
		if err = ds.dir.Import(building); err != nil {
			if !errors.Is(err, directory.ErrDuplicateID) && !errors.Is(err, directory.ErrDeletedID) {
				ds.log.WarnContext(ctx, "Failed to import building", "id", building.ID, "error", err)
			}
			continue
		}
		added++
	}

	ds.metrics.DirectoryBuildings.Set(float64(ds.dir.Len()))
	ds.log.InfoContext(ctx, "Directory synced from database",
		"fetched", len(buildings), "added", added, "total", ds.dir.Len())

	return added
}
