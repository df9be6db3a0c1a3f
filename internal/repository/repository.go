package repository

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/perimeter/internal/models"
)

// Interface is the read side of the buildings table used to seed the
// in-memory directory.
type Interface interface {
	FetchBuildings(ctx context.Context, limit int) ([]models.PredefinedBuilding, error)
	Ping(ctx context.Context) error
}

// Repository reads predefined buildings from Postgres.
type Repository struct {
	db  Database
	log *slog.Logger
}

var _ Interface = (*Repository)(nil)

// NewRepository wraps db. Rows that fail validation are reported on log.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
