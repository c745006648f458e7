package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Store struct {
	ID                uuid.UUID       `gorm:"primary_key" json:"id"`
	LogoUrl           string          `json:"logo_url"`
	Name              string          `gorm:"index;size:100;not null" json:"name" binding:"required"`
	Slug              string          `gorm:"size:100;not null;unique" json:"slug"`
	ContactName       string          `gorm:"size:100" json:"contact_name"`
	Email             string          `gorm:"size:255" json:"email"`
	Phone             string          `gorm:"size:20" json:"phone"`
	Website           string          `gorm:"size:255" json:"website"`
	About             string          `gorm:"type:text" json:"about"`
	Address           string          `gorm:"type:text" json:"address"`
	Country           string          `gorm:"size:100" json:"country"`
	City              string          `gorm:"size:100" json:"city"`
	Currency          string          `gorm:"size:10;not null;default:'MMK'" json:"currency"`
	Timezone          string          `gorm:"size:50" json:"timezone"`
	TaxRate           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_rate"`
	IsTaxInclusive    *bool           `gorm:"default:false;not null" json:"is_tax_inclusive"`
	OrderPrefix       string          `gorm:"size:10;not null;default:'ORD'" json:"order_prefix"`
	LowStockThreshold int             `gorm:"not null;default:5" json:"low_stock_threshold"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStore struct {
	LogoUrl     string `json:"logo_url"`
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	About       string `json:"about"`
	Address     string `json:"address"`
	Country     string `json:"country"`
	City        string `json:"city"`
	Currency    string `json:"currency"`
	Timezone    string `json:"timezone"`
}

type NewStoreSettings struct {
	Currency          string          `json:"currency"`
	Timezone          string          `json:"timezone"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	IsTaxInclusive    *bool           `json:"is_tax_inclusive" binding:"required"`
	OrderPrefix       string          `json:"order_prefix"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

/*
caches:
	Store:$storeId
	StoreSlug:$slug
*/

func (store *Store) StoreRedis() error {
	if err := config.SetRedisObject("Store:"+fmt.Sprint(store.ID), store, 0); err != nil {
		return err
	}
	return config.SetRedisValue("StoreSlug:"+store.Slug, store.ID.String(), 0)
}

func (store *Store) RemoveRedis() error {
	if err := config.RemoveRedisKey("Store:" + fmt.Sprint(store.ID)); err != nil {
		return err
	}
	return config.RemoveRedisKey("StoreSlug:" + store.Slug)
}

func (input *NewStore) validate(ctx context.Context, id string) error {
	// name
	if err := utils.ValidateUnique[Store](ctx, "", "name", input.Name, id); err != nil {
		return err
	}
	// slug
	if input.Slug != "" {
		if err := utils.ValidateUnique[Store](ctx, "", "slug", input.Slug, id); err != nil {
			return err
		}
	}
	// email
	if !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email address")
	}
	if err := utils.ValidateUnique[Store](ctx, "", "email", input.Email, id); err != nil {
		return err
	}
	// phone
	if input.Phone != "" {
		if err := utils.ValidateUnique[Store](ctx, "", "phone", input.Phone, id); err != nil {
			return err
		}
	}
	return nil
}

func CreateStore(ctx context.Context, input *NewStore) (*Store, error) {
	// only admin have access

	// When creating a store,
	// - create 'Owner' user
	// - create default home page with a hero section
	// - create default shipping zone
	if err := input.validate(ctx, ""); err != nil {
		return nil, err
	}
	db := config.GetDB()

	tx := db.Begin()

	SID := uuid.New()
	timezone := "Asia/Yangon"
	if input.Timezone != "" {
		timezone = input.Timezone
	}
	currency := input.Currency
	if currency == "" {
		currency = "MMK"
	}
	slug := input.Slug
	if slug == "" {
		slug = utils.Slugify(input.Name)
	}

	store := Store{
		ID:          SID,
		LogoUrl:     input.LogoUrl,
		Name:        input.Name,
		Slug:        slug,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Website:     input.Website,
		About:       input.About,
		Address:     input.Address,
		Country:     input.Country,
		City:        input.City,
		Currency:    currency,
		Timezone:    timezone,
		IsActive:    utils.NewTrue(),
	}

	// create store
	err := tx.WithContext(ctx).Create(&store).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// create defaults for the new store
	storeId := store.ID.String()
	ctx = utils.SetStoreIdInContext(ctx, storeId)

	_, err = CreateDefaultOwner(tx, ctx, storeId, store.Email, store.Name)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := CreateDefaultHomePage(tx, ctx, storeId, store.Name); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := CreateDefaultShippingZone(tx, ctx, storeId); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err = tx.Commit().Error; err != nil {
		return nil, err
	}

	// caching
	if err := utils.RemoveRedisList[Store](""); err != nil {
		return nil, err
	}

	return &store, nil
}

func UpdateStore(ctx context.Context, input *NewStore) (*Store, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId); err != nil {
		return nil, err
	}

	// db action
	db := config.GetDB()
	tx := db.Begin()
	var store Store
	if err := db.WithContext(ctx).Where("id = ?", storeId).First(&store).Error; err != nil {
		return nil, err
	}

	oldSlug := store.Slug
	slug := input.Slug
	if slug == "" {
		slug = oldSlug
	}

	err := tx.WithContext(ctx).Model(&store).Updates(map[string]interface{}{
		"LogoUrl":     input.LogoUrl,
		"Name":        input.Name,
		"Slug":        slug,
		"ContactName": input.ContactName,
		"Email":       input.Email,
		"Phone":       input.Phone,
		"Website":     input.Website,
		"About":       input.About,
		"Address":     input.Address,
		"Country":     input.Country,
		"City":        input.City,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if oldSlug != slug {
		if err := config.RemoveRedisKey("StoreSlug:" + oldSlug); err != nil {
			tx.Rollback()
			return nil, err
		}
	}
	if err := store.RemoveRedis(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := utils.RemoveRedisList[Store](""); err != nil {
		tx.Rollback()
		return nil, err
	}
	return &store, tx.Commit().Error
}

func UpdateStoreSettings(ctx context.Context, input *NewStoreSettings) (*Store, error) {

	db := config.GetDB()

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	// check exists
	var store Store
	if err := db.WithContext(ctx).Where("id = ?", storeId).First(&store).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if input.TaxRate.IsNegative() {
		return nil, errors.New("tax rate cannot be negative")
	}
	if input.LowStockThreshold < 0 {
		return nil, errors.New("low stock threshold cannot be negative")
	}

	// db action
	tx := db.Begin()
	err := tx.WithContext(ctx).Model(&store).Updates(map[string]interface{}{
		"Currency":          input.Currency,
		"Timezone":          input.Timezone,
		"TaxRate":           input.TaxRate,
		"IsTaxInclusive":    input.IsTaxInclusive,
		"OrderPrefix":       input.OrderPrefix,
		"LowStockThreshold": input.LowStockThreshold,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := store.RemoveRedis(); err != nil {
		tx.Rollback()
		return nil, err
	}
	return &store, tx.Commit().Error
}

func ToggleActiveStore(ctx context.Context, id uuid.UUID, isActive bool) (*Store, error) {

	db := config.GetDB()
	var result Store

	// check exists
	err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	// db action
	tx := db.Begin()
	err = tx.WithContext(ctx).Model(&result).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// toggling related users
	err = tx.WithContext(ctx).Model(&User{}).Where("store_id = ?", id).Updates(map[string]interface{}{
		"IsActive": isActive,
	}).Error
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// caching
	if err := result.RemoveRedis(); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := utils.RemoveRedisList[Store](""); err != nil {
		tx.Rollback()
		return nil, err
	}
	return &result, tx.Commit().Error
}

func GetStoreById(ctx context.Context, id string) (*Store, error) {

	var result Store

	exists, err := config.GetRedisObject("Store:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		db := config.GetDB()
		// db query
		err := db.WithContext(ctx).Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func GetStoreById2(tx *gorm.DB, id string) (*Store, error) {

	var result Store

	exists, err := config.GetRedisObject("Store:"+id, &result)
	if err != nil {
		return nil, err
	}

	if !exists {
		// db query
		err := tx.Where("id = ?", id).First(&result).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		// caching
		if err := result.StoreRedis(); err != nil {
			return nil, err
		}
	}
	return &result, nil
}

func GetStore(ctx context.Context) (*Store, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	return GetStoreById(ctx, storeId)
}

// GetStoreBySlug resolves the storefront host header into a store.
func GetStoreBySlug(ctx context.Context, slug string) (*Store, error) {

	id, exists, err := config.GetRedisValue("StoreSlug:" + slug)
	if err != nil {
		return nil, err
	}
	if exists && id != "" {
		return GetStoreById(ctx, id)
	}

	var result Store
	db := config.GetDB()
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&result).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	// caching
	if err := result.StoreRedis(); err != nil {
		return nil, err
	}
	return &result, nil
}

func GetStores(ctx context.Context, name *string) ([]*Store, error) {

	db := config.GetDB()
	var results []*Store

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	// db query
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
