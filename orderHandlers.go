package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type paymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

func registerOrderRoutes(g *gin.RouterGroup) {
	session := g.Group("/orders")
	session.Use(middlewares.RequireSession())

	session.GET("", func(c *gin.Context) {
		conn, err := models.PaginateOrders(c.Request.Context(), queryLimit(c), queryStr(c, "after"),
			queryStr(c, "status"), queryStr(c, "payment_status"), queryInt(c, "customer_id"), queryStr(c, "search"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandOrderEdges(c.Request.Context(), conn.Edges); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	session.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		order, err := models.GetOrder(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, order)
	})

	session.PUT("/:id/status", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req orderStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		order, err := models.UpdateOrderStatus(c.Request.Context(), id, req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, order)
	})

	session.PUT("/:id/payment-status", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req paymentStatusRequest
		if !bindJSON(c, &req) {
			return
		}
		order, err := models.UpdateOrderPaymentStatus(c.Request.Context(), id, req.PaymentStatus)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, order)
	})

	// outbox visibility for support
	session.GET("/:id/outbox", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		record, err := models.GetOutboxStatus(c.Request.Context(), models.ReferenceTypeOrder, id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, record)
	})

	session.POST("/:id/outbox/reprocess", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		record, err := models.ReprocessOutbox(c.Request.Context(), models.ReferenceTypeOrder, id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, record)
	})

	carts := g.Group("/carts")
	carts.Use(middlewares.RequireSession())

	carts.GET("", func(c *gin.Context) {
		conn, err := models.PaginateCarts(c.Request.Context(), queryLimit(c), queryStr(c, "after"), queryStr(c, "status"))
		if err != nil {
			respondError(c, err)
			return
		}
		if err := expandCartEdges(c.Request.Context(), conn.Edges); err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})
}
