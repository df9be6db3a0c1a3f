// Package api exposes geofence checks and the building directory over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/perimeter/internal/directory"
	"github.com/UnknownOlympus/perimeter/internal/geocoding"
	"github.com/UnknownOlympus/perimeter/internal/metrics"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/service"
	"github.com/gin-gonic/gin"
)

// Checker evaluates a user position against geofences.
type Checker interface {
	CheckGeofence(ctx context.Context, user models.Coordinates, opts service.CheckOptions) (*models.GeofenceResponse, error)
}

// Directory is the building directory as used by the handlers.
type Directory interface {
	Create(input directory.NewBuilding) (models.PredefinedBuilding, error)
	Get(id string) (models.PredefinedBuilding, bool)
	List() []models.PredefinedBuilding
	Update(id string, update directory.BuildingUpdate) (models.PredefinedBuilding, bool, error)
	Delete(id string) bool
	Len() int
}

// Pinger reports the health of a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	log           *slog.Logger
	checker       Checker
	dir           Directory
	pinger        Pinger             // nil when no database is configured
	geocoder      geocoding.Provider // nil when reverse geocoding is disabled
	metrics       *metrics.Metrics
	defaultMode   service.Mode
	defaultRadius float64 // geofence radius for buildings created without one
}

// NewHandler creates a Handler. pinger and geocoder may be nil.
func NewHandler(
	log *slog.Logger,
	checker Checker,
	dir Directory,
	pinger Pinger,
	geocoder geocoding.Provider,
	metrics *metrics.Metrics,
	defaultMode service.Mode,
	defaultRadius float64,
) *Handler {
	return &Handler{
		log:           log,
		checker:       checker,
		dir:           dir,
		pinger:        pinger,
		geocoder:      geocoder,
		metrics:       metrics,
		defaultMode:   defaultMode,
		defaultRadius: defaultRadius,
	}
}

func (h *Handler) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
	default:
		h.log.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "internal server error",
		})
	}
}

func invalidRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "invalid_request",
		"message": "Invalid JSON format: " + err.Error(),
	})
}

func notFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "not_found",
		"message": message,
	})
}
