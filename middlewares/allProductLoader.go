package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type allProductReader struct {
	db *gorm.DB
}

func (r *allProductReader) getAllProducts(ctx context.Context, ids []int) []*dataloader.Result[*models.AllProduct] {
	resultMap, err := models.MapAllProduct(ctx)
	if err != nil {
		return handleError[*models.AllProduct](len(ids), err)
	}
	var loaderResults = make([]*dataloader.Result[*models.AllProduct], 0, len(ids))
	for _, id := range ids {
		result, ok := resultMap[id]
		if !ok {
			var v models.AllProduct
			v.ID = id
			result = &v
		}
		loaderResults = append(loaderResults, &dataloader.Result[*models.AllProduct]{Data: result})
	}
	return loaderResults
}

func GetAllProduct(ctx context.Context, id int) (*models.AllProduct, error) {
	loaders := For(ctx)
	return loaders.allProductLoader.Load(ctx, id)()
}

func GetAllProducts(ctx context.Context, ids []int) ([]*models.AllProduct, []error) {
	loaders := For(ctx)
	return loaders.allProductLoader.LoadMany(ctx, ids)()
}
