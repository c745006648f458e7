package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// ProcessEvent routes a storefront event to its handler. Every handler runs in
// one transaction with a durable idempotency key, so redelivered events are
// safe to replay.
func ProcessEvent(ctx context.Context, logger *logrus.Logger, event config.StorefrontEvent) error {
	ctx, span := tracer.Start(ctx, "workflow.processEvent",
		trace.WithAttributes(
			attribute.String("store_id", event.StoreId),
			attribute.String("event_type", event.EventType),
		))
	defer span.End()

	switch event.EventType {
	case models.EventTypeOrderCreated:
		return handleOrderCreated(ctx, logger, event)
	case models.EventTypeOrderStatusChanged, models.EventTypeOrderPaymentChanged:
		return handleOrderChanged(ctx, logger, event)
	default:
		// Unknown event types are acked; new producers must not wedge old consumers.
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"field":      "processEvent",
				"store_id":   event.StoreId,
				"event_type": event.EventType,
			}).Warn("ignoring unknown event type")
		}
		return nil
	}
}

func runIdempotent(ctx context.Context, storeId, handlerName, messageId string, handler func(tx *gorm.DB) error) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}

	var handlerErr error
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		skip, err := BeginIdempotency(tx, storeId, handlerName, messageId)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		if handlerErr = handler(tx); handlerErr != nil {
			return handlerErr
		}
		return MarkIdempotencySucceeded(tx, storeId, handlerName, messageId)
	})
	if err != nil && handlerErr != nil && !errors.Is(err, ErrIdempotencyInProgress) {
		// Record the failure outside the rolled-back transaction.
		_ = MarkIdempotencyFailed(db.WithContext(ctx), storeId, handlerName, messageId, handlerErr)
	}
	return err
}

// handleOrderCreated maintains the analytics rollup and warns on low stock.
func handleOrderCreated(ctx context.Context, logger *logrus.Logger, event config.StorefrontEvent) error {
	return runIdempotent(ctx, event.StoreId, "order.created", event.EventId, func(tx *gorm.DB) error {
		store, err := models.GetStoreById2(tx, event.StoreId)
		if err != nil {
			return err
		}

		var order models.Order
		if err := tx.Where("store_id = ? AND id = ?", event.StoreId, event.ReferenceId).
			First(&order).Error; err != nil {
			return err
		}

		var items []*models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}
		itemsCount := 0
		for _, item := range items {
			itemsCount += item.Quantity
		}

		isNewCustomer := false
		if order.CustomerId > 0 {
			var customer models.Customer
			if err := tx.Where("store_id = ? AND id = ?", event.StoreId, order.CustomerId).
				First(&customer).Error; err == nil {
				isNewCustomer = customer.OrdersCount == 1
			}
		}

		if err := models.UpsertDailySummaryForOrder(tx, store.Timezone, &order, itemsCount, isNewCustomer); err != nil {
			return err
		}

		// low stock warnings for the products this order drained
		threshold := store.LowStockThreshold
		if threshold <= 0 {
			threshold = 5
		}
		productIds := make([]int, 0, len(items))
		for _, item := range items {
			productIds = append(productIds, item.ProductId)
		}
		var lowStock []*models.Product
		if err := tx.Where("store_id = ? AND id IN ? AND track_stock = true AND stock_quantity <= ?",
			event.StoreId, productIds, threshold).
			Find(&lowStock).Error; err != nil {
			return err
		}
		for _, product := range lowStock {
			description := fmt.Sprintf("low stock: %q has %d left", product.Name, product.StockQuantity)
			if err := models.CreateSystemActivity(tx, event.StoreId, "WARNING", product.ID, "products", description); err != nil {
				return err
			}
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"field":      "handleOrderCreated",
					"store_id":   event.StoreId,
					"product_id": product.ID,
				}).Warn(description)
			}
		}
		return nil
	})
}

// handleOrderChanged recomputes the rollup for the order's local day, so
// cancellations and refunds fall out of revenue.
func handleOrderChanged(ctx context.Context, logger *logrus.Logger, event config.StorefrontEvent) error {
	handlerName := event.EventType
	return runIdempotent(ctx, event.StoreId, handlerName, event.EventId, func(tx *gorm.DB) error {
		store, err := models.GetStoreById2(tx, event.StoreId)
		if err != nil {
			return err
		}

		var order models.Order
		if err := tx.Where("store_id = ? AND id = ?", event.StoreId, event.ReferenceId).
			First(&order).Error; err != nil {
			return err
		}

		day := localDay(order.CreatedAt, store.Timezone)
		return models.RecomputeDailySummaries(ctx, tx, event.StoreId, store.Timezone, day, day)
	})
}

func localDay(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return t.UTC().Format("2006-01-02")
	}
	return t.In(loc).Format("2006-01-02")
}
