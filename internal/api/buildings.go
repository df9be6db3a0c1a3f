package api

import (
	"context"
	"net/http"

	"github.com/UnknownOlympus/perimeter/internal/directory"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/gin-gonic/gin"
)

type createBuildingRequest struct {
	Name                 string         `json:"name"                   binding:"required"`
	Latitude             *float64       `json:"latitude"               binding:"required"`
	Longitude            *float64       `json:"longitude"              binding:"required"`
	Address              string         `json:"address"`
	Category             string         `json:"category"`
	GeofenceRadiusMeters *float64       `json:"geofence_radius_meters"`
	Metadata             map[string]any `json:"metadata"`
}

type updateBuildingRequest struct {
	Name                 *string        `json:"name"`
	Latitude             *float64       `json:"latitude"`
	Longitude            *float64       `json:"longitude"`
	Address              *string        `json:"address"`
	Category             *string        `json:"category"`
	GeofenceRadiusMeters *float64       `json:"geofence_radius_meters"`
	Metadata             map[string]any `json:"metadata"`
}

// ListBuildings GET /buildings
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings := h.dir.List()
	c.JSON(http.StatusOK, gin.H{
		"buildings": buildings,
		"count":     len(buildings),
	})
}

// GetBuilding GET /buildings/:id
func (h *Handler) GetBuilding(c *gin.Context) {
	id := c.Param("id")
	building, ok := h.dir.Get(id)
	if !ok {
		notFound(c, "building not found: "+id)
		return
	}
	c.JSON(http.StatusOK, building)
}

// CreateBuilding POST /buildings
func (h *Handler) CreateBuilding(c *gin.Context) {
	var req createBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	coordinates, err := models.NewCoordinates(*req.Latitude, *req.Longitude)
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	radius := h.defaultRadius
	if req.GeofenceRadiusMeters != nil {
		radius = *req.GeofenceRadiusMeters
	}
	if req.Address == "" && h.geocoder != nil {
		req.Address = h.lookupAddress(c.Request.Context(), coordinates)
	}

	building, err := h.dir.Create(directory.NewBuilding{
		Name:                 req.Name,
		Coordinates:          coordinates,
		Address:              req.Address,
		Category:             req.Category,
		GeofenceRadiusMeters: radius,
		Metadata:             req.Metadata,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}
	h.metrics.DirectoryBuildings.Set(float64(h.dir.Len()))

	c.JSON(http.StatusCreated, building)
}

// UpdateBuilding PUT /buildings/:id
func (h *Handler) UpdateBuilding(c *gin.Context) {
	var req updateBuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	id := c.Param("id")
	building, found, err := h.dir.Update(id, directory.BuildingUpdate{
		Name:                 req.Name,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		Address:              req.Address,
		Category:             req.Category,
		GeofenceRadiusMeters: req.GeofenceRadiusMeters,
		Metadata:             req.Metadata,
	})
	if !found {
		notFound(c, "building not found: "+id)
		return
	}
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, building)
}

// DeleteBuilding DELETE /buildings/:id
func (h *Handler) DeleteBuilding(c *gin.Context) {
	id := c.Param("id")
	if !h.dir.Delete(id) {
		notFound(c, "building not found: "+id)
		return
	}
	h.metrics.DirectoryBuildings.Set(float64(h.dir.Len()))

	c.Status(http.StatusNoContent)
}

// lookupAddress reverse geocodes coordinates, returning "" when nothing is found.
func (h *Handler) lookupAddress(ctx context.Context, coordinates models.Coordinates) string {
	place, err := h.geocoder.ReverseGeocode(ctx, coordinates)
	if err != nil {
		h.log.WarnContext(ctx, "Could not resolve building address", "coordinates", coordinates.String(), "error", err)
		return ""
	}
	return place.DisplayName
}
