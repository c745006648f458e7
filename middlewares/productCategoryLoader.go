package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type productCategoryReader struct {
	db *gorm.DB
}

func (r *productCategoryReader) getProductCategories(ctx context.Context, ids []int) []*dataloader.Result[*models.ProductCategory] {
	var results []models.ProductCategory
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.ProductCategory](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetProductCategory(ctx context.Context, id int) (*models.ProductCategory, error) {
	loaders := For(ctx)
	return loaders.productCategoryLoader.Load(ctx, id)()
}

func GetProductCategories(ctx context.Context, ids []int) ([]*models.ProductCategory, []error) {
	loaders := For(ctx)
	return loaders.productCategoryLoader.LoadMany(ctx, ids)()
}
