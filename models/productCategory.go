package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"gorm.io/gorm"
)

// maxCategoryDepth limits nesting; a category whose parent already sits at
// this depth cannot accept children.
const maxCategoryDepth = 3

type ProductCategory struct {
	ID               int       `gorm:"primary_key" json:"id"`
	StoreId          string    `gorm:"index;not null" json:"store_id"`
	Name             string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Slug             string    `gorm:"index;size:120;not null" json:"slug"`
	Description      string    `gorm:"type:text" json:"description"`
	ParentCategoryId int       `gorm:"index;not null;default:0" json:"parent_category_id"`
	Position         int       `gorm:"not null;default:0" json:"position"`
	Images           []*Image  `gorm:"-" json:"images,omitempty"`
	IsActive         *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (pc ProductCategory) GetStoreId() string {
	return pc.StoreId
}

type NewProductCategory struct {
	Name             string `json:"name" binding:"required"`
	Slug             string `json:"slug"`
	Description      string `json:"description"`
	ParentCategoryId int    `json:"parent_category_id"`
	Position         int    `json:"position"`
}

type ProductCategoriesEdge Edge[ProductCategory]
type ProductCategoriesConnection struct {
	PageInfo *PageInfo                `json:"pageInfo"`
	Edges    []*ProductCategoriesEdge `json:"edges"`
}

// returns decoded cursor string
func (pc ProductCategory) GetCursor() string {
	return pc.CreatedAt.String()
}

// get ids of associated products
func (pc ProductCategory) ProductIds(ctx context.Context) (ids []int, err error) {
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&Product{}).
		Where("category_id = ?", pc.ID).
		Select("id").Scan(&ids).Error
	return
}

// categoryDepth walks up the parent chain. Root categories have depth 1.
func categoryDepth(ctx context.Context, tx *gorm.DB, storeId string, id int) (int, error) {
	depth := 0
	for id > 0 {
		depth++
		if depth > maxCategoryDepth {
			return depth, nil
		}
		var parentId int
		if err := tx.WithContext(ctx).Model(&ProductCategory{}).
			Where("store_id = ? AND id = ?", storeId, id).
			Select("parent_category_id").Scan(&parentId).Error; err != nil {
			return 0, err
		}
		id = parentId
	}
	return depth, nil
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProductCategory) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if id == input.ParentCategoryId {
			return errors.New("self-parent not allowed")
		}
	}
	if input.Slug == "" {
		input.Slug = utils.Slugify(input.Name)
	}
	// name & slug unique within the store
	if err := utils.ValidateUnique[ProductCategory](ctx, storeId, "name", input.Name, id); err != nil {
		return err
	}
	if err := utils.ValidateUnique[ProductCategory](ctx, storeId, "slug", input.Slug, id); err != nil {
		return err
	}
	// parent category
	if input.ParentCategoryId > 0 {
		if err := utils.ValidateResourceId[ProductCategory](ctx, storeId, input.ParentCategoryId); err != nil {
			return errors.New("parent not found")
		}
		db := config.GetDB()
		parentDepth, err := categoryDepth(ctx, db, storeId, input.ParentCategoryId)
		if err != nil {
			return err
		}
		if parentDepth >= maxCategoryDepth {
			return errors.New("category nesting too deep")
		}
	}
	return nil
}

func CreateProductCategory(ctx context.Context, input *NewProductCategory) (*ProductCategory, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}

	category := ProductCategory{
		StoreId:          storeId,
		Name:             input.Name,
		Slug:             input.Slug,
		Description:      input.Description,
		ParentCategoryId: input.ParentCategoryId,
		Position:         input.Position,
		IsActive:         utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), category.ID, category, "created category "+category.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := category.RemoveAllRedis(); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCategories); err != nil {
		return nil, err
	}

	return &category, nil
}

func UpdateProductCategory(ctx context.Context, id int, input *NewProductCategory) (*ProductCategory, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}

	category, err := utils.FetchModel[ProductCategory](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *category
	if err := tx.WithContext(ctx).Model(&category).Updates(map[string]interface{}{
		"Name":             input.Name,
		"Slug":             input.Slug,
		"Description":      input.Description,
		"ParentCategoryId": input.ParentCategoryId,
		"Position":         input.Position,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "product_categories", before, category, "updated category "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*category); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCategories, utils.CacheTagProducts); err != nil {
		return nil, err
	}
	return category, nil
}

func DeleteProductCategory(ctx context.Context, id int) (*ProductCategory, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[ProductCategory](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	// don't delete if category has children
	count, err := utils.ResourceCountWhere[ProductCategory](ctx, storeId, "parent_category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("category has children")
	}

	// don't delete if category is used by products
	count, err = utils.ResourceCountWhere[Product](ctx, storeId, "category_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("used by product")
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted category "+result.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCategories); err != nil {
		return nil, err
	}

	return result, nil
}

func GetProductCategory(ctx context.Context, id int) (*ProductCategory, error) {

	return GetResource[ProductCategory](ctx, id)
}

func GetProductCategories(ctx context.Context, name *string) ([]*ProductCategory, error) {

	db := config.GetDB()
	var results []*ProductCategory

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("position").Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveProductCategory(ctx context.Context, id int, isActive bool) (*ProductCategory, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	var category ProductCategory
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("store_id = ? AND id = ?", storeId, id).First(&category).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Model(&category).Updates(map[string]interface{}{
		"is_active": isActive,
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := toggleChildrenCategories(ctx, tx, id, isActive); err != nil {
		tx.Rollback()
		return &category, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(category); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagCategories, utils.CacheTagProducts); err != nil {
		return nil, err
	}

	return &category, nil
}

// toggle children of the parent recursively, parent is assumed to have toggled
func toggleChildrenCategories(ctx context.Context, tx *gorm.DB, parentId int, isActive bool) error {

	var childrenIds []int
	if err := tx.WithContext(ctx).
		Model(&ProductCategory{}).
		Where("parent_category_id = ?", parentId).
		Select("id").
		Scan(&childrenIds).Error; err != nil {
		return err
	}

	// break when parent has no children
	if len(childrenIds) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).Model(&ProductCategory{}).
		Where("id IN ?", childrenIds).Updates(map[string]interface{}{
		"is_active": isActive,
	}).Error; err != nil {
		return err
	}

	for _, childId := range childrenIds {
		// each child becomes a parent
		if err := toggleChildrenCategories(ctx, tx, childId, isActive); err != nil {
			return err
		}
	}
	return nil
}

func PaginateProductCategories(ctx context.Context, limit *int, after *string, name *string, parentCategoryId *int) (*ProductCategoriesConnection, error) {

	db := config.GetDB()
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	dbCtx := db.WithContext(ctx).Where("store_id = ?", storeId)

	if name != nil && *name != "" {
		dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if parentCategoryId != nil && *parentCategoryId > 0 {
		dbCtx.Where("parent_category_id = ?", *parentCategoryId)
	}

	pageLimit := config.SearchLimit
	if limit != nil && *limit > 0 {
		pageLimit = *limit
	}
	edges, pageInfo, err := FetchPageCompositeCursor[ProductCategory](dbCtx, pageLimit, after, "created_at", "<")
	if err != nil {
		return nil, err
	}
	var conn ProductCategoriesConnection
	conn.PageInfo = pageInfo
	for _, edge := range edges {
		categoryEdge := ProductCategoriesEdge(edge)
		conn.Edges = append(conn.Edges, &categoryEdge)
	}
	return &conn, nil
}
