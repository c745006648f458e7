package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type cartItemsReader struct {
	db *gorm.DB
}

func (r *cartItemsReader) GetCartItems(ctx context.Context, cartIds []int) []*dataloader.Result[[]*models.CartItem] {
	var results []models.CartItem
	err := r.db.WithContext(ctx).Where("cart_id IN ?", cartIds).Order("id asc").Find(&results).Error
	if err != nil {
		return handleError[[]*models.CartItem](len(cartIds), err)
	}

	return generateLoaderArrayResults(results, cartIds)
}

func GetCartItems(ctx context.Context, cartId int) ([]*models.CartItem, error) {
	loaders := For(ctx)
	return loaders.cartItemsLoader.Load(ctx, cartId)()
}

func GetCartItemsForCarts(ctx context.Context, cartIds []int) ([][]*models.CartItem, []error) {
	loaders := For(ctx)
	return loaders.cartItemsLoader.LoadMany(ctx, cartIds)()
}
