package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type pageReader struct {
	db *gorm.DB
}

func (r *pageReader) getPages(ctx context.Context, ids []int) []*dataloader.Result[*models.Page] {
	var results []models.Page
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*models.Page](len(ids), err)
	}

	return generateLoaderResults(results, ids)
}

func GetPage(ctx context.Context, id int) (*models.Page, error) {
	loaders := For(ctx)
	return loaders.pageLoader.Load(ctx, id)()
}

func GetPages(ctx context.Context, ids []int) ([]*models.Page, []error) {
	loaders := For(ctx)
	return loaders.pageLoader.LoadMany(ctx, ids)()
}
