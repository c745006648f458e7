package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             int                 `gorm:"primary_key" json:"id"`
	StoreId        string              `gorm:"index;not null" json:"store_id"`
	Name           string              `gorm:"size:100;not null" json:"name" binding:"required"`
	Slug           string              `gorm:"index;size:120;not null" json:"slug"`
	Description    string              `gorm:"type:text" json:"description"`
	CategoryId     int                 `gorm:"index;not null;default:0" json:"category_id"`
	Category       *AllProductCategory `gorm:"-" json:"category,omitempty"`
	Images         []*Image            `gorm:"polymorphic:Reference" json:"images"`
	Sku            string              `gorm:"size:100" json:"sku"`
	Price          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"price"`
	CompareAtPrice *decimal.Decimal    `gorm:"type:decimal(20,4)" json:"compare_at_price"`
	CostPrice      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"cost_price"`
	StockQuantity  int                 `gorm:"not null;default:0" json:"stock_quantity"`
	TrackStock     *bool               `gorm:"not null;default:true" json:"track_stock"`
	Status         ProductStatus       `gorm:"type:enum('draft','active','archived');not null;default:'draft'" json:"status"`
	IsActive       *bool               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p Product) GetStoreId() string {
	return p.StoreId
}

type NewProduct struct {
	Name           string           `json:"name" binding:"required"`
	Slug           string           `json:"slug"`
	Description    string           `json:"description"`
	CategoryId     int              `json:"category_id"`
	Images         []*NewImage      `json:"images"`
	Sku            string           `json:"sku"`
	Price          decimal.Decimal  `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price"`
	CostPrice      decimal.Decimal  `json:"cost_price"`
	StockQuantity  int              `json:"stock_quantity"`
	TrackStock     *bool            `json:"track_stock"`
	Status         string           `json:"status"`
}

type ProductsEdge Edge[Product]
type ProductsConnection struct {
	Edges    []*ProductsEdge `json:"edges"`
	PageInfo *PageInfo       `json:"pageInfo"`
}

// returns decoded cursor string
func (p Product) GetCursor() string {
	return p.CreatedAt.String()
}

func (input *NewProduct) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[Product](ctx, storeId, id); err != nil {
			return err
		}
	}
	if input.Slug == "" {
		input.Slug = utils.Slugify(input.Name)
	}
	if err := utils.ValidateUnique[Product](ctx, storeId, "slug", input.Slug, id); err != nil {
		return err
	}
	if input.Sku != "" {
		if err := utils.ValidateUnique[Product](ctx, storeId, "sku", input.Sku, id); err != nil {
			return err
		}
	}
	if input.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if input.CompareAtPrice != nil && input.CompareAtPrice.LessThan(input.Price) {
		return errors.New("compare-at price must exceed price")
	}
	if input.StockQuantity < 0 {
		return errors.New("stock quantity cannot be negative")
	}
	if input.Status != "" {
		if _, err := ParseProductStatus(input.Status); err != nil {
			return err
		}
	}
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, storeId, input.CategoryId); err != nil {
			return errors.New("category not found")
		}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}

	images, err := mapNewImages(input.Images, "products", 0)
	if err != nil {
		return nil, err
	}

	status := ProductStatusDraft
	if input.Status != "" {
		status, _ = ParseProductStatus(input.Status)
	}
	trackStock := utils.NewTrue()
	if input.TrackStock != nil {
		trackStock = input.TrackStock
	}

	product := Product{
		StoreId:        storeId,
		Name:           input.Name,
		Slug:           input.Slug,
		Description:    input.Description,
		CategoryId:     input.CategoryId,
		Images:         images,
		Sku:            input.Sku,
		Price:          input.Price,
		CompareAtPrice: input.CompareAtPrice,
		CostPrice:      input.CostPrice,
		StockQuantity:  input.StockQuantity,
		TrackStock:     trackStock,
		Status:         status,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&product).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), product.ID, product, "created product "+product.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts); err != nil {
		return nil, err
	}

	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":           input.Name,
		"Slug":           input.Slug,
		"Description":    input.Description,
		"CategoryId":     input.CategoryId,
		"Sku":            input.Sku,
		"Price":          input.Price,
		"CompareAtPrice": input.CompareAtPrice,
		"CostPrice":      input.CostPrice,
	}
	if input.TrackStock != nil {
		updates["TrackStock"] = input.TrackStock
	}
	if input.Status != "" {
		status, _ := ParseProductStatus(input.Status)
		updates["Status"] = status
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *product
	if err := tx.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if _, err := UpsertImages(ctx, tx, input.Images, "products", id); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "products", before, product, "updated product "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts, utils.CacheTagPages); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product that never sold; products referenced by
// order history must be archived instead.
func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[Product](ctx, storeId, id, "Images")
	if err != nil {
		return nil, err
	}

	count, err := utils.ResourceCountWhere[OrderItem](ctx, storeId, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("product has order history, archive it instead")
	}

	tx := db.Begin()
	// drop lines referencing it from open carts
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND product_id = ?", storeId, id).
		Delete(&CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, img := range result.Images {
		if err := img.Delete(tx, ctx); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted product "+result.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts, utils.CacheTagPages); err != nil {
		return nil, err
	}

	return result, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {

	return GetResource[Product](ctx, id, "Images")
}

func GetProducts(ctx context.Context, name *string) ([]*Product, error) {

	db := config.GetDB()
	var results []*Product

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if name != nil && len(*name) > 0 {
		term := "%" + *name + "%"
		dbCtx = dbCtx.Where("name LIKE ? OR sku LIKE ?", term, term)
	}
	err := dbCtx.Order("name").Limit(100).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveProduct(ctx context.Context, id int, isActive bool) (*Product, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	result, err := ToggleActiveModel[Product](ctx, storeId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts); err != nil {
		return nil, err
	}
	return result, nil
}

// ChangeProductStatus moves a product through draft -> active -> archived.
func ChangeProductStatus(ctx context.Context, id int, status string) (*Product, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	parsed, err := ParseProductStatus(status)
	if err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *product
	if err := tx.WithContext(ctx).Model(&product).Updates(map[string]interface{}{
		"Status": parsed,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "products", before, product,
		fmt.Sprintf("changed product %s status to %s", product.Name, parsed)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts, utils.CacheTagPages); err != nil {
		return nil, err
	}
	return product, nil
}

// AdjustProductStock applies a signed delta to stock on hand. The UPDATE
// carries a floor guard so concurrent adjustments cannot drive stock negative.
func AdjustProductStock(ctx context.Context, id int, delta int, reason string) (*Product, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if delta == 0 {
		return nil, errors.New("delta cannot be zero")
	}

	product, err := utils.FetchModel[Product](ctx, storeId, id)
	if err != nil {
		return nil, err
	}
	if !utils.DereferencePtr(product.TrackStock, false) {
		return nil, errors.New("product does not track stock")
	}

	db := config.GetDB()
	tx := db.Begin()
	result := tx.WithContext(ctx).Model(&Product{}).
		Where("store_id = ? AND id = ? AND stock_quantity + ? >= 0", storeId, id, delta).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", delta))
	if result.Error != nil {
		tx.Rollback()
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, utils.ErrInsufficientStock
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "products", nil, nil,
		fmt.Sprintf("adjusted stock of %s by %+d (%s)", product.Name, delta, reason)); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*product); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagProducts); err != nil {
		return nil, err
	}

	return utils.FetchModel[Product](ctx, storeId, id)
}

func PaginateProducts(ctx context.Context, limit *int, after *string, search *string, status *string, categoryId *int) (*ProductsConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if search != nil && *search != "" {
		term := "%" + *search + "%"
		dbCtx.Where("name LIKE ? OR sku LIKE ?", term, term)
	}
	if status != nil && *status != "" {
		parsed, err := ParseProductStatus(*status)
		if err != nil {
			return nil, err
		}
		dbCtx.Where("status = ?", parsed)
	}
	if categoryId != nil && *categoryId > 0 {
		dbCtx.Where("category_id = ?", *categoryId)
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Product](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn ProductsConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		productEdge := ProductsEdge(edge)
		conn.Edges = append(conn.Edges, &productEdge)
	}
	return &conn, nil
}

/* storefront (public) reads */

// GetPublishedProductBySlug serves the public product page. Only active
// products on active stores are visible.
func GetPublishedProductBySlug(ctx context.Context, storeId string, slug string) (*Product, error) {

	db := config.GetDB()
	var result Product

	err := db.WithContext(ctx).
		Where("store_id = ? AND slug = ? AND status = ? AND is_active = true", storeId, slug, ProductStatusActive).
		Preload("Images").
		First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

func PaginatePublishedProducts(ctx context.Context, storeId string, limit *int, after *string, categorySlug *string, search *string) (*ProductsConnection, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).
		Where("store_id = ? AND status = ? AND is_active = true", storeId, ProductStatusActive)

	if categorySlug != nil && *categorySlug != "" {
		var category ProductCategory
		if err := db.WithContext(ctx).
			Where("store_id = ? AND slug = ?", storeId, *categorySlug).
			First(&category).Error; err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		dbCtx.Where("category_id = ?", category.ID)
	}
	if search != nil && *search != "" {
		dbCtx.Where("name LIKE ?", "%"+*search+"%")
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[Product](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn ProductsConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		productEdge := ProductsEdge(edge)
		conn.Edges = append(conn.Edges, &productEdge)
	}
	return &conn, nil
}

// LowStockProducts lists tracked products at or under the store threshold.
func LowStockProducts(ctx context.Context, threshold int) ([]*Product, error) {

	db := config.GetDB()
	var results []*Product

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	err := db.WithContext(ctx).
		Where("store_id = ? AND track_stock = true AND status = ? AND stock_quantity <= ?", storeId, ProductStatusActive, threshold).
		Order("stock_quantity").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
