package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// A ShippingZone groups destination countries; "*" matches any country but
// loses to a zone naming the country explicitly.
type ShippingZone struct {
	ID        int             `gorm:"primary_key" json:"id"`
	StoreId   string          `gorm:"index;not null" json:"store_id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Countries string          `gorm:"size:500;not null" json:"countries"`
	Rates     []*ShippingRate `gorm:"foreignkey:ShippingZoneId" json:"rates"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (z ShippingZone) GetStoreId() string {
	return z.StoreId
}

type ShippingRate struct {
	ID             int              `gorm:"primary_key" json:"id"`
	StoreId        string           `gorm:"index;not null" json:"store_id"`
	ShippingZoneId int              `gorm:"index;not null" json:"shipping_zone_id"`
	Name           string           `gorm:"size:100;not null" json:"name"`
	Amount         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	FreeOverAmount *decimal.Decimal `gorm:"type:decimal(20,4)" json:"free_over_amount"`
	Position       int              `gorm:"not null;default:0" json:"position"`
	IsActive       *bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r ShippingRate) GetStoreId() string {
	return r.StoreId
}

func (r ShippingRate) GetId() int {
	return r.ID
}

func (r ShippingRate) fillable() map[string]interface{} {
	return map[string]interface{}{
		"Name":           r.Name,
		"Amount":         r.Amount,
		"FreeOverAmount": r.FreeOverAmount,
		"Position":       r.Position,
		"IsActive":       r.IsActive,
	}
}

type NewShippingRate struct {
	HasId
	Name           string           `json:"name" binding:"required"`
	Amount         decimal.Decimal  `json:"amount"`
	FreeOverAmount *decimal.Decimal `json:"free_over_amount"`
	Position       int              `json:"position"`
}

type NewShippingZone struct {
	Name      string             `json:"name" binding:"required"`
	Countries []string           `json:"countries" binding:"required"`
	Rates     []*NewShippingRate `json:"rates"`
}

// countries are stored as a comma-joined upper-case list
func joinCountries(countries []string) string {
	cleaned := make([]string, 0, len(countries))
	for _, c := range countries {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return strings.Join(utils.UniqueSlice(cleaned), ",")
}

func (z ShippingZone) CountryList() []string {
	if z.Countries == "" {
		return nil
	}
	return strings.Split(z.Countries, ",")
}

func (z ShippingZone) matchesCountry(country string) bool {
	for _, c := range z.CountryList() {
		if c == country {
			return true
		}
	}
	return false
}

func (z ShippingZone) isCatchAll() bool {
	return z.matchesCountry("*")
}

// a selected rate only resolves while its zone is active and still
// covers the country
func zoneServes(zone *ShippingZone, country string) bool {
	if zone.IsActive == nil || !*zone.IsActive {
		return false
	}
	return zone.matchesCountry(country) || zone.isCatchAll()
}

func (input *NewShippingZone) validate(ctx context.Context, storeId string, id int) error {
	if id > 0 {
		if err := utils.ValidateResourceId[ShippingZone](ctx, storeId, id); err != nil {
			return err
		}
	}
	if err := utils.ValidateUnique[ShippingZone](ctx, storeId, "name", input.Name, id); err != nil {
		return err
	}
	if len(input.Countries) == 0 {
		return errors.New("at least one country is required")
	}
	for _, rate := range input.Rates {
		if rate.Name == "" {
			return errors.New("rate name is required")
		}
		if rate.Amount.IsNegative() {
			return errors.New("rate amount cannot be negative")
		}
		if rate.FreeOverAmount != nil && rate.FreeOverAmount.IsNegative() {
			return errors.New("free-over amount cannot be negative")
		}
	}
	return nil
}

func CreateShippingZone(ctx context.Context, input *NewShippingZone) (*ShippingZone, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if err := input.validate(ctx, storeId, 0); err != nil {
		return nil, err
	}

	zone := ShippingZone{
		StoreId:   storeId,
		Name:      input.Name,
		Countries: joinCountries(input.Countries),
		IsActive:  utils.NewTrue(),
	}
	for _, rate := range input.Rates {
		zone.Rates = append(zone.Rates, &ShippingRate{
			StoreId:        storeId,
			Name:           rate.Name,
			Amount:         rate.Amount,
			FreeOverAmount: rate.FreeOverAmount,
			Position:       rate.Position,
			IsActive:       utils.NewTrue(),
		})
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&zone).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityCreate(tx.WithContext(ctx), zone.ID, zone, "created shipping zone "+zone.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagShipping); err != nil {
		return nil, err
	}

	return &zone, nil
}

func UpdateShippingZone(ctx context.Context, id int, input *NewShippingZone) (*ShippingZone, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	if err := input.validate(ctx, storeId, id); err != nil {
		return nil, err
	}

	zone, err := utils.FetchModel[ShippingZone](ctx, storeId, id)
	if err != nil {
		return nil, err
	}

	rates := make([]ShippingRate, 0, len(input.Rates))
	for _, rate := range input.Rates {
		rates = append(rates, ShippingRate{
			ID:             rate.ID,
			StoreId:        storeId,
			ShippingZoneId: id,
			Name:           rate.Name,
			Amount:         rate.Amount,
			FreeOverAmount: rate.FreeOverAmount,
			Position:       rate.Position,
			IsActive:       utils.NewTrue(),
		})
	}

	db := config.GetDB()
	tx := db.Begin()
	before := *zone
	if err := tx.WithContext(ctx).Model(&zone).Updates(map[string]interface{}{
		"Name":      input.Name,
		"Countries": joinCountries(input.Countries),
	}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	// replace the zone's rates with the input set
	if err := ReplaceAssociation(ctx, tx, rates, "store_id = ? AND shipping_zone_id = ?", storeId, id); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "UPDATE", id, "shipping_zones", before, zone, "updated shipping zone "+input.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*zone); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagShipping); err != nil {
		return nil, err
	}
	return utils.FetchModel[ShippingZone](ctx, storeId, id, "Rates")
}

func DeleteShippingZone(ctx context.Context, id int) (*ShippingZone, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}
	db := config.GetDB()
	result, err := utils.FetchModel[ShippingZone](ctx, storeId, id, "Rates")
	if err != nil {
		return nil, err
	}

	// active carts hold a rate from this zone, removing it would orphan them
	rateIds := make([]int, 0, len(result.Rates))
	for _, rate := range result.Rates {
		rateIds = append(rateIds, rate.ID)
	}
	if len(rateIds) > 0 {
		var inUse int64
		if err := db.WithContext(ctx).Model(&Cart{}).
			Where("store_id = ? AND status = ? AND shipping_rate_id IN ?", storeId, CartStatusActive, rateIds).
			Count(&inUse).Error; err != nil {
			return nil, err
		}
		if inUse > 0 {
			return nil, errors.New("shipping zone is in use by active carts")
		}
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND shipping_zone_id = ?", storeId, id).
		Delete(&ShippingRate{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(&result).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := SaveActivityDelete(tx.WithContext(ctx), id, result, "deleted shipping zone "+result.Name); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if err := RemoveRedisBoth(*result); err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagShipping); err != nil {
		return nil, err
	}

	return result, nil
}

func GetShippingZone(ctx context.Context, id int) (*ShippingZone, error) {

	return GetResource[ShippingZone](ctx, id, "Rates")
}

func GetShippingZones(ctx context.Context) ([]*ShippingZone, error) {

	db := config.GetDB()
	var results []*ShippingZone

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	err := db.WithContext(ctx).
		Where("store_id = ?", storeId).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveShippingZone(ctx context.Context, id int, isActive bool) (*ShippingZone, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	result, err := ToggleActiveModel[ShippingZone](ctx, storeId, id, isActive)
	if err != nil {
		return nil, err
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagShipping); err != nil {
		return nil, err
	}
	return result, nil
}

// pickZoneRates returns candidate rates ordered by position for the zone
// that serves the country. Explicit country zones win over catch-all zones.
func pickShippingZone(zones []*ShippingZone, country string) *ShippingZone {
	country = strings.ToUpper(strings.TrimSpace(country))
	var catchAll *ShippingZone
	for _, zone := range zones {
		if !utils.DereferencePtr(zone.IsActive, false) {
			continue
		}
		if zone.matchesCountry(country) {
			return zone
		}
		if catchAll == nil && zone.isCatchAll() {
			catchAll = zone
		}
	}
	return catchAll
}

// resolveRateAmount applies the free-over threshold to a rate.
func resolveRateAmount(rate *ShippingRate, subTotal decimal.Decimal) decimal.Decimal {
	if rate.FreeOverAmount != nil && !subTotal.LessThan(*rate.FreeOverAmount) {
		return decimal.Zero
	}
	return rate.Amount
}

// ShippingOption is a quoted rate for a destination and cart subtotal.
type ShippingOption struct {
	RateId int             `json:"rate_id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// EstimateShippingOptions quotes every active rate of the matching zone.
func EstimateShippingOptions(ctx context.Context, storeId string, country string, subTotal decimal.Decimal) ([]*ShippingOption, error) {

	db := config.GetDB()
	var zones []*ShippingZone
	if err := db.WithContext(ctx).
		Where("store_id = ?", storeId).
		Preload("Rates", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = true").Order("position")
		}).
		Find(&zones).Error; err != nil {
		return nil, err
	}

	zone := pickShippingZone(zones, country)
	if zone == nil {
		return nil, errors.New("no shipping available for this destination")
	}

	options := make([]*ShippingOption, 0, len(zone.Rates))
	for _, rate := range zone.Rates {
		options = append(options, &ShippingOption{
			RateId: rate.ID,
			Name:   rate.Name,
			Amount: resolveRateAmount(rate, subTotal),
		})
	}
	if len(options) == 0 {
		return nil, errors.New("no shipping available for this destination")
	}
	return options, nil
}

// ResolveShippingRate loads one rate and quotes it, checking the rate still
// serves the destination.
func ResolveShippingRate(ctx context.Context, tx *gorm.DB, storeId string, rateId int, country string, subTotal decimal.Decimal) (*ShippingRate, decimal.Decimal, error) {

	var rate ShippingRate
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ? AND is_active = true", storeId, rateId).
		First(&rate).Error; err != nil {
		return nil, decimal.Zero, errors.New("shipping rate not found")
	}

	var zone ShippingZone
	if err := tx.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, rate.ShippingZoneId).
		First(&zone).Error; err != nil {
		return nil, decimal.Zero, errors.New("shipping zone not found")
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if !zoneServes(&zone, country) {
		return nil, decimal.Zero, errors.New("rate does not serve this destination")
	}

	return &rate, resolveRateAmount(&rate, subTotal), nil
}

// CreateDefaultShippingZone seeds a worldwide zone with a single flat rate.
// Runs inside the store-creation transaction.
func CreateDefaultShippingZone(tx *gorm.DB, ctx context.Context, storeId string) error {

	zone := ShippingZone{
		StoreId:   storeId,
		Name:      "Worldwide",
		Countries: "*",
		IsActive:  utils.NewTrue(),
		Rates: []*ShippingRate{
			{
				StoreId:  storeId,
				Name:     "Standard",
				Amount:   decimal.Zero,
				IsActive: utils.NewTrue(),
			},
		},
	}
	return tx.WithContext(ctx).Create(&zone).Error
}
