package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/perimeter/internal/geocoding"
	"github.com/UnknownOlympus/perimeter/internal/models"
	"github.com/gin-gonic/gin"
)

// ReverseGeocode GET /geocode/reverse?latitude=..&longitude=..
func (h *Handler) ReverseGeocode(c *gin.Context) {
	if h.geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "geocoding_disabled",
			"message": "reverse geocoding is not configured",
		})
		return
	}

	latitude, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	longitude, errLon := strconv.ParseFloat(c.Query("longitude"), 64)
	if err := errors.Join(errLat, errLon); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_parameter",
			"message": "latitude and longitude query parameters must be numbers",
		})
		return
	}
	coordinates, err := models.NewCoordinates(latitude, longitude)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	place, err := h.geocoder.ReverseGeocode(c.Request.Context(), coordinates)
	switch {
	case errors.Is(err, geocoding.ErrNominatimEmptyResponse), errors.Is(err, geocoding.ErrEmptyResponse):
		notFound(c, "no place found at "+coordinates.String())
		return
	case err != nil:
		h.log.ErrorContext(c.Request.Context(), "Reverse geocoding failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_error",
			"message": "reverse geocoding failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coordinates": coordinates,
		"place":       place,
	})
}
