package main

import (
	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

type validateVoucherRequest struct {
	Code     string          `json:"code" binding:"required"`
	SubTotal decimal.Decimal `json:"sub_total"`
	Email    string          `json:"email"`
}

type voucherValidationResponse struct {
	Valid          bool             `json:"valid"`
	Reason         string           `json:"reason,omitempty"`
	Code           string           `json:"code"`
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`
}

func registerDiscountRoutes(g *gin.RouterGroup) {
	session := g.Group("")
	session.Use(middlewares.RequireSession())

	discounts := session.Group("/discounts")

	discounts.GET("", func(c *gin.Context) {
		conn, err := models.PaginateDiscounts(c.Request.Context(), queryLimit(c), queryStr(c, "after"), queryStr(c, "name"))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, conn)
	})

	discounts.POST("", func(c *gin.Context) {
		var input models.NewDiscount
		if !bindJSON(c, &input) {
			return
		}
		discount, err := models.CreateDiscount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, discount)
	})

	discounts.GET("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		discount, err := models.GetDiscount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, discount)
	})

	discounts.PUT("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.NewDiscount
		if !bindJSON(c, &input) {
			return
		}
		discount, err := models.UpdateDiscount(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, discount)
	})

	discounts.DELETE("/:id", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		discount, err := models.DeleteDiscount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, discount)
	})

	discounts.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		discount, err := models.ToggleActiveDiscount(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, discount)
	})

	discounts.GET("/:id/voucher-codes", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		codes, err := models.GetVoucherCodes(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		discount, err := middlewares.GetAllDiscount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, gin.H{"discount": discount, "codes": codes})
	})

	discounts.POST("/:id/voucher-codes/generate", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var input models.GenerateVoucherCodesInput
		if !bindJSON(c, &input) {
			return
		}
		input.DiscountId = id
		codes, err := models.GenerateVoucherCodes(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		respondCreated(c, codes)
	})

	vouchers := session.Group("/voucher-codes")

	vouchers.PUT("/:id/toggle", func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req toggleRequest
		if !bindJSON(c, &req) {
			return
		}
		code, err := models.ToggleActiveVoucherCode(c.Request.Context(), id, *req.IsActive)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, code)
	})

	// dry-run validation for the dashboard
	vouchers.POST("/validate", func(c *gin.Context) {
		var req validateVoucherRequest
		if !bindJSON(c, &req) {
			return
		}
		storeId, _ := utils.GetStoreIdFromContext(c.Request.Context())
		respondData(c, validateVoucher(c, storeId, req))
	})
}

func validateVoucher(c *gin.Context, storeId string, req validateVoucherRequest) voucherValidationResponse {
	voucher, discount, err := models.ValidateVoucherCode(c.Request.Context(), storeId, req.Code, req.SubTotal, req.Email)
	if err != nil {
		return voucherValidationResponse{Valid: false, Reason: err.Error(), Code: req.Code}
	}
	amount := utils.CalculateDiscountAmount(req.SubTotal, discount.Value, string(discount.Type))
	return voucherValidationResponse{
		Valid:          true,
		Code:           voucher.Code,
		DiscountAmount: &amount,
	}
}
