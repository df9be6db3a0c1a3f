package api

import (
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/UnknownOlympus/perimeter/internal/service"
	"github.com/gin-gonic/gin"
)

type checkRequest struct {
	Latitude     *float64 `json:"latitude"      binding:"required"`
	Longitude    *float64 `json:"longitude"     binding:"required"`
	RadiusMeters *float64 `json:"radius_meters"`
	BuildingID   string   `json:"building_id"`
	Mode         string   `json:"mode"`
}

type checkResponse struct {
	*models.GeofenceResponse
	IsNearAnyBuilding bool                   `json:"is_near_any_building"`
	NearestBuilding   *models.GeofenceStatus `json:"nearest_building"`
}

// CheckGeofence POST /geofence/check
func (h *Handler) CheckGeofence(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	user, err := models.NewCoordinates(*req.Latitude, *req.Longitude)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	mode := h.defaultMode
	if req.Mode != "" {
		if mode, err = service.ParseMode(req.Mode); err != nil {
			h.abortWithError(c, err)
			return
		}
	}

	opts := service.CheckOptions{Mode: mode, BuildingID: req.BuildingID}
	if req.RadiusMeters != nil {
		if *req.RadiusMeters <= 0 {
			h.abortWithError(c, fmt.Errorf("%w: radius_meters must be positive", models.ErrValidation))
			return
		}
		opts.SearchRadiusMeters = *req.RadiusMeters
	}

	if mode == service.ModeDirectory && req.BuildingID != "" {
		if _, ok := h.dir.Get(req.BuildingID); !ok {
			notFound(c, "building not found: "+req.BuildingID)
			return
		}
	}

	response, err := h.checker.CheckGeofence(c.Request.Context(), user, opts)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	body := checkResponse{
		GeofenceResponse:  response,
		IsNearAnyBuilding: response.IsNearAnyBuilding(),
	}
	if nearest, ok := response.NearestBuilding(); ok {
		body.NearestBuilding = &nearest
	}

	c.JSON(http.StatusOK, body)
}
