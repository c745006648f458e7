package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

func registerShippingRoutes(g *gin.RouterGroup) {
	session := g.Group("/shipping-zones")
	session.Use(middlewares.RequireSession())

	session.GET("", func(c *gin.Context) {
		zones, err := models.GetShippingZones(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandShippingZones(c.Request.Context(), zones); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, zones)
	})

	session.POST("", func(c *gin.Context) {
		var input models.NewShippingZone
		if !bindJSON(c, &input) {
			return
		}
		zone, err := models.CreateShippingZone(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, zone)
	})

	session.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		zone, err := models.GetShippingZone(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, zone)
	})

	session.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewShippingZone
		if !bindJSON(c, &input) {
			return
		}
		zone, err := models.UpdateShippingZone(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, zone)
	})

	session.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		zone, err := models.DeleteShippingZone(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, zone)
	})

	session.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		zone, err := models.ToggleActiveShippingZone(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, zone)
	})
}
