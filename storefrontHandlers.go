package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
)

type applyVoucherRequest struct {
	Code string `json:"code" binding:"required"`
}

type cartShippingRequest struct {
	Country string `json:"country" binding:"required"`
	RateId  int    `json:"rate_id" binding:"required"`
}

type cartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type attachCustomerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Phone string `json:"phone"`
}

// respondCart echoes the cart token so new shoppers can persist it.
func respondCart(c *gin.Context, cart *models.Cart) {
	if err := expandCartItems(c.Request.Context(), cart.Details); err != nil {
		respondError(c, err)
		return
	}
	c.Header("x-cart-token", cart.Token)
	respondData(c, cart)
}

func storefrontStore(c *gin.Context) (string, bool) {
	storeId, ok := utils.GetStoreIdFromContext(c.Request.Context())
	if !ok || storeId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "store is required"})
		return "", false
	}
	return storeId, true
}

func storefrontCartToken(c *gin.Context) (string, string, bool) {
	storeId, ok := storefrontStore(c)
	if !ok {
		return "", "", false
	}
	token, ok := utils.GetCartTokenFromContext(c.Request.Context())
	if !ok || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart token is required"})
		return "", "", false
	}
	return storeId, token, true
}

func registerStorefrontRoutes(g *gin.RouterGroup) {

	// catalog browse
	g.GET("/products", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		conn, err := models.PaginatePublishedProducts(c.Request.Context(), storeId, queryLimit(c),
			queryStr(c, "after"), queryStr(c, "category"), queryStr(c, "search"))
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

	g.GET("/products/:slug", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		product, err := models.GetPublishedProductBySlug(c.Request.Context(), storeId, c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, product)
	})

	g.GET("/categories", func(c *gin.Context) {
		all, err := models.ListAllProductCategory(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		// shoppers only see active categories
		visible := make([]*models.AllProductCategory, 0, len(all))
		for _, category := range all {
			if category.IsActive {
				visible = append(visible, category)
			}
		}
		respondData(c, visible)
	})

	g.GET("/pages/:slug", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		page, err := models.GetPublishedPageBySlug(c.Request.Context(), storeId, c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, page)
	})

	// cart
	g.GET("/cart", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		cart, err := models.GetOrCreateCart(c.Request.Context(), storeId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.POST("/cart/items", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		var input models.NewCartItem
		if !bindJSON(c, &input) {
			return
		}
		cart, err := models.AddCartItem(c.Request.Context(), storeId, token, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.PUT("/cart/items/:id", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		itemId, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req cartQuantityRequest
		if !bindJSON(c, &req) {
			return
		}
		cart, err := models.UpdateCartItemQuantity(c.Request.Context(), storeId, token, itemId, *req.Quantity)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.DELETE("/cart/items/:id", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		itemId, ok := idParam(c, "id")
		if !ok {
			return
		}
		cart, err := models.RemoveCartItem(c.Request.Context(), storeId, token, itemId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.DELETE("/cart", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		cart, err := models.ClearCart(c.Request.Context(), storeId, token)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.POST("/cart/voucher", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		var req applyVoucherRequest
		if !bindJSON(c, &req) {
			return
		}
		cart, err := models.ApplyVoucherToCart(c.Request.Context(), storeId, token, req.Code)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respondCart(c, cart)
	})

	g.DELETE("/cart/voucher", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		cart, err := models.RemoveVoucherFromCart(c.Request.Context(), storeId, token)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.POST("/cart/shipping", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		var req cartShippingRequest
		if !bindJSON(c, &req) {
			return
		}
		cart, err := models.SetCartShipping(c.Request.Context(), storeId, token, req.Country, req.RateId)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	g.POST("/cart/attach", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		var req attachCustomerRequest
		if !bindJSON(c, &req) {
			return
		}
		cart, err := models.AttachCustomerToCart(c.Request.Context(), storeId, token, req.Name, req.Email, req.Phone)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCart(c, cart)
	})

	// shipping quote for the current cart
	g.GET("/shipping/estimate", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		country := strings.TrimSpace(c.Query("country"))
		if country == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "country is required"})
			return
		}
		cart, err := models.GetOrCreateCart(c.Request.Context(), storeId)
		if err != nil {
			respondError(c, err)
			return
		}
		options, err := models.EstimateShippingOptions(c.Request.Context(), storeId, country, cart.SubTotal)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, options)
	})

	// checkout
	g.POST("/checkout", func(c *gin.Context) {
		storeId, token, ok := storefrontCartToken(c)
		if !ok {
			return
		}
		var input models.CheckoutInput
		if !bindJSON(c, &input) {
			return
		}
		order, err := models.CheckoutCart(c.Request.Context(), storeId, token, &input)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		respondCreated(c, order)
	})

	// order lookup by number + email
	g.GET("/orders/:number", func(c *gin.Context) {
		storeId, ok := storefrontStore(c)
		if !ok {
			return
		}
		email := strings.ToLower(strings.TrimSpace(c.Query("email")))
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
			return
		}
		order, err := models.GetOrderByNumber(c.Request.Context(), storeId, c.Param("number"))
		if err != nil {
			respondError(c, err)
			return
		}
		if !strings.EqualFold(order.Email, email) {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		respondData(c, order)
	})
}
