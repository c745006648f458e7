package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type allDiscountReader struct {
	db *gorm.DB
}

func (r *allDiscountReader) getAllDiscounts(ctx context.Context, ids []int) []*dataloader.Result[*models.AllDiscount] {
	resultMap, err := models.MapAllDiscount(ctx)
	if err != nil {
		return handleError[*models.AllDiscount](len(ids), err)
	}
	var loaderResults = make([]*dataloader.Result[*models.AllDiscount], 0, len(ids))
	for _, id := range ids {
		result, ok := resultMap[id]
		if !ok {
			var v models.AllDiscount
			v.ID = id
			result = &v
		}
		loaderResults = append(loaderResults, &dataloader.Result[*models.AllDiscount]{Data: result})
	}
	return loaderResults
}

func GetAllDiscount(ctx context.Context, id int) (*models.AllDiscount, error) {
	loaders := For(ctx)
	return loaders.allDiscountLoader.Load(ctx, id)()
}

func GetAllDiscounts(ctx context.Context, ids []int) ([]*models.AllDiscount, []error) {
	loaders := For(ctx)
	return loaders.allDiscountLoader.LoadMany(ctx, ids)()
}
