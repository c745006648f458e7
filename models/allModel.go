package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

// get AllModelMap for loader, redis or db
func MapAllModel[ModelT any, AllT Identifier](ctx context.Context) (map[int]*AllT, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	key := utils.GetTypeName[AllT]() + "Map:" + storeId

	var allMap map[int]*AllT

	// retrieve from redis
	if exists, err := config.GetRedisObject(key, &allMap); err != nil {
		return nil, err
	} else if !exists {
		// if the map has not been cached yet
		// fetch resources and construct the map, cache the result

		allMap = make(map[int]*AllT)
		var allSlice []*AllT
		db := config.GetDB()
		var m ModelT
		dbCtx := db.WithContext(ctx).Model(&m)
		dbCtx.Where("store_id = ?", storeId)
		if err := dbCtx.Find(&allSlice).Error; err != nil {
			return nil, err
		}

		// fill the map
		for _, allModel := range allSlice {
			allMap[(*allModel).GetId()] = allModel
		}

		var duration time.Duration
		if err := config.SetRedisObject(key, &allMap, duration); err != nil {
			return nil, err
		}
	}

	return allMap, nil
}

// embedding struct will receive ID field, satisfy Identifier interface
type HasId struct {
	ID int `json:"id"`
}

func (h HasId) GetId() int {
	return h.ID
}

type AllProduct struct {
	HasId
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Sku           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Status        ProductStatus   `json:"status"`
	IsActive      bool            `json:"is_active"`
}

type AllProductCategory struct {
	HasId
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	ParentCategoryId int    `json:"parent_category_id"`
	IsActive         bool   `json:"is_active"`
}

type AllDiscount struct {
	HasId
	Name     string          `json:"name"`
	Type     DiscountType    `json:"type"`
	Value    decimal.Decimal `json:"value"`
	IsActive bool            `json:"is_active"`
}

type AllPage struct {
	HasId
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Status     PageStatus `json:"status"`
	IsHomePage bool       `json:"is_home_page"`
}

func MapAllProduct(ctx context.Context) (map[int]*AllProduct, error) {
	return MapAllModel[Product, AllProduct](ctx)
}

func ListAllProduct(ctx context.Context) ([]*AllProduct, error) {
	return ListAllResource[Product, AllProduct](ctx)
}

func MapAllProductCategory(ctx context.Context) (map[int]*AllProductCategory, error) {
	return MapAllModel[ProductCategory, AllProductCategory](ctx)
}

func ListAllProductCategory(ctx context.Context) ([]*AllProductCategory, error) {
	return ListAllResource[ProductCategory, AllProductCategory](ctx)
}

func MapAllDiscount(ctx context.Context) (map[int]*AllDiscount, error) {
	return MapAllModel[Discount, AllDiscount](ctx)
}

func ListAllDiscount(ctx context.Context) ([]*AllDiscount, error) {
	return ListAllResource[Discount, AllDiscount](ctx)
}

func MapAllPage(ctx context.Context) (map[int]*AllPage, error) {
	return MapAllModel[Page, AllPage](ctx)
}

func ListAllPage(ctx context.Context) ([]*AllPage, error) {
	return ListAllResource[Page, AllPage](ctx)
}
