package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
	"net/http"
)

type toggleRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func registerTenantRoutes(g *gin.RouterGroup) {
	session := g.Group("")
	session.Use(middlewares.RequireSession())

	// platform admin: store management
	admin := session.Group("/stores")
	admin.Use(middlewares.RequireAdmin())

	admin.GET("", func(c *gin.Context) {
		stores, err := models.GetStores(c.Request.Context(), queryStr(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, stores)
	})

	admin.POST("", func(c *gin.Context) {
		var input models.NewStore
		if !bindJSON(c, &input) {
			return
		}
		store, err := models.CreateStore(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, store)
	})

	admin.PUT("/:id/toggle", func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		store, err := models.ToggleActiveStore(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, store)
	})

	// own store
	session.GET("/store", func(c *gin.Context) {
		store, err := models.GetStore(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, store)
	})

	session.PUT("/store", func(c *gin.Context) {
		var input models.NewStore
		if !bindJSON(c, &input) {
			return
		}
		store, err := models.UpdateStore(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, store)
	})

	session.PUT("/store/settings", func(c *gin.Context) {
		var input models.NewStoreSettings
		if !bindJSON(c, &input) {
			return
		}
		store, err := models.UpdateStoreSettings(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, store)
	})

	// staff users
	users := session.Group("/users")

	users.GET("", func(c *gin.Context) {
		list, err := models.GetUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, list)
	})

	users.POST("", func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, user)
	})

	users.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email"`
			Phone    string `json:"phone"`
			ImageUrl string `json:"image_url"`
		}
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.UpdateUser(c.Request.Context(), id, req.Name, req.Email, req.Phone, req.ImageUrl)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	users.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		user, err := models.DeleteUser(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	users.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := models.ToggleActiveUser(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, user)
	})

	// customers
	customers := session.Group("/customers")

	customers.GET("", func(c *gin.Context) {
		conn, err := models.PaginateCustomers(c.Request.Context(), queryLimit(c), queryStr(c, "after"), queryStr(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	customers.POST("", func(c *gin.Context) {
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, customer)
	})

	customers.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, customer)
	})

	customers.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewCustomer
		if !bindJSON(c, &input) {
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, customer)
	})

	customers.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, customer)
	})

	customers.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		customer, err := models.ToggleActiveCustomer(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, customer)
	})

	// activity feed
	session.GET("/activities", func(c *gin.Context) {
		limit := 20
		if l := queryLimit(c); l != nil {
			limit = *l
		}
		conn, err := models.PaginateActivities(c.Request.Context(), limit, queryStr(c, "after"),
			queryInt(c, "reference_id"), queryStr(c, "reference_type"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandActivityEdges(c.Request.Context(), conn.Edges); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	// image uploads
	uploads := session.Group("/uploads")
	uploads.POST("/sign", signUploadHandler())
	uploads.POST("/complete", completeUploadHandler())
	uploads.POST("/delete", deleteImageHandler())
}
