package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type shippingRatesReader struct {
	db *gorm.DB
}

func (r *shippingRatesReader) GetShippingRates(ctx context.Context, zoneIds []int) []*dataloader.Result[[]*models.ShippingRate] {
	var results []models.ShippingRate
	err := r.db.WithContext(ctx).Where("shipping_zone_id IN ?", zoneIds).Order("position, id asc").Find(&results).Error
	if err != nil {
		return handleError[[]*models.ShippingRate](len(zoneIds), err)
	}

	return generateLoaderArrayResults(results, zoneIds)
}

func GetShippingRates(ctx context.Context, zoneId int) ([]*models.ShippingRate, error) {
	loaders := For(ctx)
	return loaders.shippingRatesLoader.Load(ctx, zoneId)()
}

func GetShippingRatesForZones(ctx context.Context, zoneIds []int) ([][]*models.ShippingRate, []error) {
	loaders := For(ctx)
	return loaders.shippingRatesLoader.LoadMany(ctx, zoneIds)()
}
