package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StoreDailySummary is a derived aggregate over orders for fast dashboards.
// It is upserted by the order.created workflow and rebuildable from orders.
type StoreDailySummary struct {
	StoreId string    `gorm:"primaryKey;size:64;index:idx_sds_store_day,priority:1" json:"store_id"`
	Day     time.Time `gorm:"primaryKey;type:date;index:idx_sds_store_day,priority:2" json:"day"`

	OrdersCount   int             `gorm:"not null;default:0" json:"orders_count"`
	ItemsCount    int             `gorm:"not null;default:0" json:"items_count"`
	GrossRevenue  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"gross_revenue"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_total"`
	ShippingTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"shipping_total"`
	NetRevenue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_revenue"`
	NewCustomers  int             `gorm:"not null;default:0" json:"new_customers"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UpsertDailySummaryForOrder folds one placed order into its local-date bucket.
// Runs inside the consumer's transaction, keyed by the store timezone.
func UpsertDailySummaryForOrder(tx *gorm.DB, timezone string, order *Order, itemsCount int, isNewCustomer bool) error {

	newCustomers := 0
	if isNewCustomer {
		newCustomers = 1
	}

	return tx.Exec(`
		INSERT INTO store_daily_summaries
			(store_id, day, orders_count, items_count, gross_revenue, discount_total, shipping_total, net_revenue, new_customers, created_at, updated_at)
		VALUES
			(?, DATE(CONVERT_TZ(?, 'UTC', ?)), 1, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			orders_count = orders_count + 1,
			items_count = items_count + VALUES(items_count),
			gross_revenue = gross_revenue + VALUES(gross_revenue),
			discount_total = discount_total + VALUES(discount_total),
			shipping_total = shipping_total + VALUES(shipping_total),
			net_revenue = net_revenue + VALUES(net_revenue),
			new_customers = new_customers + VALUES(new_customers),
			updated_at = NOW()
	`, order.StoreId, order.CreatedAt, timezone,
		itemsCount, order.SubTotal, order.DiscountAmount, order.ShippingAmount, order.TotalAmount,
		newCustomers).Error
}

// RecomputeDailySummaries rebuilds the rollup from orders for a date range.
// Cancelled orders are excluded. Stale rows inside the range are removed.
func RecomputeDailySummaries(ctx context.Context, tx *gorm.DB, storeId string, timezone string, from string, to string) error {

	if err := tx.WithContext(ctx).Exec(`
		INSERT INTO store_daily_summaries
			(store_id, day, orders_count, items_count, gross_revenue, discount_total, shipping_total, net_revenue, new_customers, created_at, updated_at)
		SELECT
			o.store_id,
			DATE(CONVERT_TZ(o.created_at, 'UTC', ?)) AS day,
			COUNT(*) AS orders_count,
			COALESCE(SUM(oi.items_count), 0) AS items_count,
			COALESCE(SUM(o.sub_total), 0) AS gross_revenue,
			COALESCE(SUM(o.discount_amount), 0) AS discount_total,
			COALESCE(SUM(o.shipping_amount), 0) AS shipping_total,
			COALESCE(SUM(o.total_amount), 0) AS net_revenue,
			COALESCE(SUM(CASE WHEN DATE(CONVERT_TZ(c.first_order_at, 'UTC', ?)) = DATE(CONVERT_TZ(o.created_at, 'UTC', ?)) AND c.first_order_at = o.created_at THEN 1 ELSE 0 END), 0) AS new_customers,
			NOW(),
			NOW()
		FROM orders o
		LEFT JOIN (
			SELECT order_id, SUM(quantity) AS items_count
			FROM order_items
			GROUP BY order_id
		) oi ON oi.order_id = o.id
		LEFT JOIN customers c ON c.id = o.customer_id
		WHERE
			o.store_id = ?
			AND o.status <> 'cancelled'
			AND DATE(CONVERT_TZ(o.created_at, 'UTC', ?)) BETWEEN ? AND ?
		GROUP BY
			o.store_id, day
		ON DUPLICATE KEY UPDATE
			orders_count = VALUES(orders_count),
			items_count = VALUES(items_count),
			gross_revenue = VALUES(gross_revenue),
			discount_total = VALUES(discount_total),
			shipping_total = VALUES(shipping_total),
			net_revenue = VALUES(net_revenue),
			new_customers = VALUES(new_customers),
			updated_at = NOW()
	`, timezone, timezone, timezone, storeId, timezone, from, to).Error; err != nil {
		return err
	}

	// remove dates that no longer have any countable orders
	return tx.WithContext(ctx).Exec(`
		DELETE sds
		FROM store_daily_summaries sds
		LEFT JOIN (
			SELECT
				o.store_id,
				DATE(CONVERT_TZ(o.created_at, 'UTC', ?)) AS day
			FROM orders o
			WHERE
				o.store_id = ?
				AND o.status <> 'cancelled'
				AND DATE(CONVERT_TZ(o.created_at, 'UTC', ?)) BETWEEN ? AND ?
			GROUP BY
				o.store_id, day
		) agg
			ON agg.store_id = sds.store_id
			AND agg.day = sds.day
		WHERE
			sds.store_id = ?
			AND sds.day BETWEEN ? AND ?
			AND agg.day IS NULL
	`, timezone, storeId, timezone, from, to, storeId, from, to).Error
}
