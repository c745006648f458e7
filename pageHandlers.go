package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

type reorderSectionsRequest struct {
	SectionIds []int `json:"section_ids" binding:"required"`
}

func registerPageRoutes(g *gin.RouterGroup) {
	session := g.Group("")
	session.Use(middlewares.RequireSession())

	// the declarative field registry the editor renders widgets from
	session.GET("/section-definitions", func(c *gin.Context) {
		respondData(c, models.ListSectionDefinitions())
	})

	pages := session.Group("/pages")

	pages.GET("", func(c *gin.Context) {
		list, err := models.GetPages(c.Request.Context(), queryStr(c, "title"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandPages(c.Request.Context(), list); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, list)
	})

	pages.POST("", func(c *gin.Context) {
		var input models.NewPage
		if !bindJSON(c, &input) {
			return
		}
		page, err := models.CreatePage(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, page)
	})

	pages.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		page, err := models.GetPage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewPage
		if !bindJSON(c, &input) {
			return
		}
		page, err := models.UpdatePage(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		page, err := models.DeletePage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.POST("/:id/publish", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		page, err := models.PublishPage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.POST("/:id/unpublish", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		page, err := models.UnpublishPage(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.POST("/:id/sections", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewPageSection
		if !bindJSON(c, &input) {
			return
		}
		section, err := models.AddPageSection(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, section)
	})

	pages.PUT("/:id/sections/reorder", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req reorderSectionsRequest
		if !bindJSON(c, &req) {
			return
		}
		page, err := models.ReorderPageSections(c.Request.Context(), id, req.SectionIds)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	pages.PUT("/:id/sections/:sectionId", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		sectionId, ok := idParam(c, "sectionId")
		if !ok {
			return
		}
		var input models.NewPageSection
		if !bindJSON(c, &input) {
			return
		}
		section, err := models.UpdatePageSection(c.Request.Context(), id, sectionId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, section)
	})

	pages.DELETE("/:id/sections/:sectionId", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		sectionId, ok := idParam(c, "sectionId")
		if !ok {
			return
		}
		section, err := models.RemovePageSection(c.Request.Context(), id, sectionId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, section)
	})
}
