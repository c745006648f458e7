package middlewares

import (
	"context"

	"github.com/graph-gophers/dataloader/v7"
	"github.com/mmdatafocus/storefront_backend/models"
	"gorm.io/gorm"
)

type orderItemsReader struct {
	db *gorm.DB
}

func (r *orderItemsReader) GetOrderItems(ctx context.Context, orderIds []int) []*dataloader.Result[[]*models.OrderItem] {
	var results []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id IN ?", orderIds).Order("id asc").Find(&results).Error
	if err != nil {
		return handleError[[]*models.OrderItem](len(orderIds), err)
	}

	return generateLoaderArrayResults(results, orderIds)
}

func GetOrderItems(ctx context.Context, orderId int) ([]*models.OrderItem, error) {
	loaders := For(ctx)
	return loaders.orderItemsLoader.Load(ctx, orderId)()
}

func GetOrderItemsForOrders(ctx context.Context, orderIds []int) ([][]*models.OrderItem, []error) {
	loaders := For(ctx)
	return loaders.orderItemsLoader.LoadMany(ctx, orderIds)()
}
