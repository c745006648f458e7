package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type imageReader struct {
	db            *gorm.DB
	referenceType string
}

func (r *imageReader) GetImages(ctx context.Context, referenceIds []int) []*dataloader.Result[[]*models.Image] {
	var results []models.Image
	if err := r.db.WithContext(ctx).Where("reference_type = ? AND reference_id IN ?", r.referenceType, referenceIds).Find(&results).Error; err != nil {
		return handleError[[]*models.Image](len(referenceIds), err)
	}

	return generateLoaderArrayResults(results, referenceIds)
}

func (l *Loaders) imageLoaderFor(referenceType string) *dataloader.Loader[int, []*models.Image] {
	switch referenceType {
	case "products":
		return l.productImageLoader
	case "product_categories":
		return l.categoryImageLoader
	case "pages":
		return l.pageImageLoader
	}
	return nil
}

func GetImages(ctx context.Context, referenceType string, referenceId int) ([]*models.Image, error) {
	loaders := For(ctx)
	return loaders.imageLoaderFor(referenceType).Load(ctx, referenceId)()
}

func GetImagesForAll(ctx context.Context, referenceType string, referenceIds []int) ([][]*models.Image, []error) {
	loaders := For(ctx)
	return loaders.imageLoaderFor(referenceType).LoadMany(ctx, referenceIds)()
}
