package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const healthCheckTimeout = 2 * time.Second

// NewRouter wires the API routes, the health check and the metrics endpoint.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(h.log))

	router.POST("/geofence/check", h.CheckGeofence)

	buildings := router.Group("/buildings")
	buildings.GET("", h.ListBuildings)
	buildings.POST("", h.CreateBuilding)
	buildings.GET("/:id", h.GetBuilding)
	buildings.PUT("/:id", h.UpdateBuilding)
	buildings.DELETE("/:id", h.DeleteBuilding)

	router.GET("/geocode/reverse", h.ReverseGeocode)

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return router
}

// Health GET /healthz
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	h.log.DebugContext(ctx, "Performing health checks...")

	if h.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		defer cancel()
		if err := h.pinger.Ping(pingCtx); err != nil {
			h.log.ErrorContext(ctx, "Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DB ping failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "OK", "buildings": h.dir.Len()})
}

// accessLog writes one slog record per request, at a level chosen by status.
func accessLog(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		log.LogAttrs(c.Request.Context(), level, "HTTP request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
