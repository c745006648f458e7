package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

type adjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

type changeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func registerCatalogRoutes(g *gin.RouterGroup) {
	session := g.Group("")
	session.Use(middlewares.RequireSession())

	categories := session.Group("/categories")

	categories.GET("", func(c *gin.Context) {
		conn, err := models.PaginateProductCategories(c.Request.Context(), queryLimit(c), queryStr(c, "after"),
			queryStr(c, "name"), queryInt(c, "parent_category_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandCategoryEdges(c.Request.Context(), conn.Edges); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	categories.GET("/all", func(c *gin.Context) {
		list, err := models.ListAllProductCategory(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, list)
	})

	categories.POST("", func(c *gin.Context) {
		var input models.NewProductCategory
		if !bindJSON(c, &input) {
			return
		}
		category, err := models.CreateProductCategory(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, category)
	})

	categories.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		category, err := models.GetProductCategory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, category)
	})

	categories.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewProductCategory
		if !bindJSON(c, &input) {
			return
		}
		category, err := models.UpdateProductCategory(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, category)
	})

	categories.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		category, err := models.DeleteProductCategory(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, category)
	})

	categories.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		category, err := models.ToggleActiveProductCategory(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, category)
	})

	products := session.Group("/products")

	products.GET("", func(c *gin.Context) {
		conn, err := models.PaginateProducts(c.Request.Context(), queryLimit(c), queryStr(c, "after"),
			queryStr(c, "search"), queryStr(c, "status"), queryInt(c, "category_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandProductEdges(c.Request.Context(), conn.Edges); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	products.GET("/all", func(c *gin.Context) {
		list, err := models.ListAllProduct(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, list)
	})

	products.POST("", func(c *gin.Context) {
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, product)
	})

	products.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	products.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewProduct
		if !bindJSON(c, &input) {
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	products.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	products.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		product, err := models.ToggleActiveProduct(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	products.PUT("/:id/status", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req changeStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		product, err := models.ChangeProductStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	products.POST("/:id/adjust-stock", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req adjustStockRequest
		if !bindJSON(c, &req) {
			return
		}
		product, err := models.AdjustProductStock(c.Request.Context(), id, req.Delta, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})
}
