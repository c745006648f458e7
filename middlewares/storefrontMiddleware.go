package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
)

// StorefrontMiddleware resolves the x-store header (store slug) into the
// tenant context for public storefront routes, and manages the cart token:
// a uuid issued on the first hit and echoed back on every response.
func StorefrontMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {

		slug := c.Request.Header.Get("x-store")
		if slug == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "store is required"})
			c.Abort()
			return
		}

		store, err := models.GetStoreBySlug(c.Request.Context(), slug)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
			c.Abort()
			return
		}
		if !*store.IsActive {
			c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
			c.Abort()
			return
		}

		ctx := utils.SetStoreIdInContext(c.Request.Context(), store.ID.String())

		cartToken := c.Request.Header.Get("x-cart-token")
		if cartToken == "" {
			cartToken = uuid.NewString()
		}
		ctx = utils.SetCartTokenInContext(ctx, cartToken)
		c.Header("x-cart-token", cartToken)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
