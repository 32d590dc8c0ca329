// Package server is the HTTP front end of the graph service.
package server

import (
	"net/http"

	"github.com/christophergentle/tpsgraph/internal/metrics"
	"github.com/christophergentle/tpsgraph/internal/surface"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the routes. m may be nil to leave out /metrics.
func SetupRouter(h *GraphHandler, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Logger())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "tpsgraph is running",
		})
	})

	r.GET("/graph.png", h.Graph(surface.FormatPNG))
	r.GET("/graph.svg", h.Graph(surface.FormatSVG))

	api := r.Group("/api/v1")
	{
		api.GET("/tps", h.Series)
		api.GET("/scene", h.Scene)
		if h.recorder != nil {
			api.POST("/tps", h.Record)
		}
		if h.apps != nil {
			api.GET("/apps", h.Apps)
		}
	}

	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "not found")
	})
	return r
}
