package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type discountReader struct {
	db *gorm.DB
}

func (r *discountReader) getDiscounts(ctx context.Context, ids []int) []*dataloader.Result[*models.Discount] {
	var results []models.Discount
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Discount](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetDiscount(ctx context.Context, id int) (*models.Discount, error) {
	loaders := For(ctx)
	return loaders.discountLoader.Load(ctx, id)()
}

func GetDiscounts(ctx context.Context, ids []int) ([]*models.Discount, []error) {
	loaders := For(ctx)
	return loaders.discountLoader.LoadMany(ctx, ids)()
}
