package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type pageSectionsReader struct {
	db *gorm.DB
}

func (r *pageSectionsReader) GetPageSections(ctx context.Context, pageIds []int) []*dataloader.Result[[]*models.PageSection] {
	var results []models.PageSection
	err := r.db.WithContext(ctx).Where("page_id IN ?", pageIds).Order("position asc, id asc").Find(&results).Error
	if err != nil {
		return handleError[[]*models.PageSection](len(pageIds), err)
	}

	return generateLoaderArrayResults(results, pageIds)
}

func GetPageSections(ctx context.Context, pageId int) ([]*models.PageSection, error) {
	loaders := For(ctx)
	return loaders.pageSectionsLoader.Load(ctx, pageId)()
}

func GetPageSectionsForPages(ctx context.Context, pageIds []int) ([][]*models.PageSection, []error) {
	loaders := For(ctx)
	return loaders.pageSectionsLoader.LoadMany(ctx, pageIds)()
}
