package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

type Discount struct {
	ID             int              `gorm:"primary_key" json:"id"`
	StoreId        string           `gorm:"index;not null" json:"store_id"`
	Name           string           `gorm:"size:100;not null" json:"name" binding:"required"`
	Type           DiscountType     `gorm:"type:enum('percentage','fixed');not null" json:"type" binding:"required"`
	Value          decimal.Decimal  `gorm:"type:decimal(20,4);not null" json:"value"`
	MinOrderAmount *decimal.Decimal `gorm:"type:decimal(20,4)" json:"min_order_amount"`
	StartsAt       *time.Time       `json:"starts_at"`
	EndsAt         *time.Time       `json:"ends_at"`
	UsageLimit     int              `gorm:"not null;default:0" json:"usage_limit"`
	UsedCount      int              `gorm:"not null;default:0" json:"used_count"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d Discount) GetStoreId() string {
	return d.StoreId
}

type NewDiscount struct {
	Name           string           `json:"name" binding:"required"`
	Type           string           `json:"type" binding:"required"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount *decimal.Decimal `json:"min_order_amount"`
	StartsAt       *time.Time       `json:"starts_at"`
	EndsAt         *time.Time       `json:"ends_at"`
	UsageLimit     int              `json:"usage_limit"`
}

type DiscountsEdge Edge[Discount]
type DiscountsConnection struct {
	Edges    []*DiscountsEdge `json:"edges"`
	PageInfo *PageInfo        `json:"pageInfo"`
}

// returns decoded cursor string
func (d Discount) GetCursor() string {
	return d.CreatedAt.String()
}

func (input *NewDiscount) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Discount](ctx, storeId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[Discount](ctx, storeId, "name", input.Name, id); err != nil {
		return err
	}
	discountType, err := ParseDiscountType(input.Type)
	if err != nil {
		return err
	}
	if !input.Value.IsPositive() {
		return errors.New("value must be positive")
	}
	if discountType == DiscountTypePercentage && input.Value.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("percentage cannot exceed 100")
	}
	if input.MinOrderAmount != nil && input.MinOrderAmount.IsNegative() {
		return errors.New("min order amount cannot be negative")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return errors.New("ends before it starts")
	}
	if input.UsageLimit < 0 {
		return errors.New("usage limit cannot be negative")
	}
	return nil
}

func CreateDiscount(ctx context.Context, input *NewDiscount) (*Discount, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}
	discountType, _ := ParseDiscountType(input.Type)

	discount := Discount{
		StoreId:        storeId,
		Name:           input.Name,
		Type:           discountType,
		Value:          input.Value,
		MinOrderAmount: input.MinOrderAmount,
		StartsAt:       input.StartsAt,
		EndsAt:         input.EndsAt,
		UsageLimit:     input.UsageLimit,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&discount).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), discount.ID, discount, "created discount "+discount.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagDiscounts); err != nil {
		return nil, err
	}

	return &discount, nil
}

func UpdateDiscount(ctx context.Context, id int, input *NewDiscount) (*Discount, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}
	discountType, _ := ParseDiscountType(input.Type)

	discount, err := utils.FetchModel[Discount](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *discount
	if err := tx.WithContext(ctx).Model(&discount).Updates(map[string]interface{}{
		"Name":           input.Name,
		"Type":           discountType,
		"Value":          input.Value,
		"MinOrderAmount": input.MinOrderAmount,
		"StartsAt":       input.StartsAt,
		"EndsAt":         input.EndsAt,
		"UsageLimit":     input.UsageLimit,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "discounts", before, discount, "updated discount "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*discount); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagDiscounts); err != nil {
		return nil, err
	}
	return discount, nil
}

func DeleteDiscount(ctx context.Context, id int) (*Discount, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[Discount](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	// keep discounts with redemption history for reporting
	count, err := utils.ResourceCountWhere[VoucherRedemption](ctx, storeId, "discount_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("discount has redemptions, deactivate it instead")
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND discount_id = ?", storeId, id).
		Delete(&VoucherCode{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted discount "+result.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagDiscounts); err != nil {
		return nil, err
	}
	// codes changed, rebuild the negative-lookup filter
	if err := RebuildVoucherBloom(ctx, storeId); err != nil {
		return nil, err
	}

	return result, nil
}

func GetDiscount(ctx context.Context, id int) (*Discount, error) {

	return GetResource[Discount](ctx, id)
}

func GetDiscounts(ctx context.Context, name *string) ([]*Discount, error) {

	db := config.GetDB()
	var results []*Discount

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("created_at DESC").Limit(100).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveDiscount(ctx context.Context, id int, isActive bool) (*Discount, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	result, err := ToggleActiveModel[Discount](ctx, storeId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagDiscounts); err != nil {
		return nil, err
	}
	return result, nil
}

func PaginateDiscounts(ctx context.Context, limit *int, after *string, name *string) (*DiscountsConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Discount](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn DiscountsConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		discountEdge := DiscountsEdge(edge)
		conn.Edges = append(conn.Edges, &discountEdge)
	}
	return &conn, nil
}
