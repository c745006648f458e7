package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

type SalesByProductRow struct {
	ProductId    int             `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductSku   string          `json:"productSku"`
	SoldQty      int             `json:"soldQty"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	RevenueShare decimal.Decimal `json:"revenueShare"`
}

type SalesByProductResponse struct {
	Rows         []*SalesByProductRow `json:"rows"`
	TotalRevenue decimal.Decimal      `json:"totalRevenue"`
}

func GetSalesByProductReport(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString, limit *int) (*SalesByProductResponse, error) {

	started := time.Now()

	sqlT := `
WITH ProductSales AS (
SELECT
    oi.product_id,
    oi.product_name,
    oi.sku AS product_sku,
    SUM(oi.quantity) AS sold_qty,
    SUM(oi.line_total) AS total_revenue
FROM
    orders AS o
        JOIN
    order_items AS oi ON oi.order_id = o.id
WHERE
    o.store_id = @storeId
        AND o.created_at BETWEEN @fromDate AND @toDate
        AND o.status <> 'cancelled'
        AND o.payment_status <> 'refunded'
GROUP BY oi.product_id , oi.product_name , oi.sku
)
SELECT
    ProductSales.product_id,
    ProductSales.product_name,
    ProductSales.product_sku,
    ProductSales.sold_qty,
    ProductSales.total_revenue
FROM
    ProductSales
ORDER BY ProductSales.total_revenue DESC
{{- if .limit }} LIMIT @limit {{- end }}
`

	store, err := models.GetStore(ctx)
	if err != nil {
		return nil, err
	}
	storeId := store.ID.String()

	if err := fromDate.StartOfDayUTCTime(store.Timezone); err != nil {
		return nil, err
	}
	if err := toDate.EndOfDayUTCTime(store.Timezone); err != nil {
		return nil, err
	}

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"limit": utils.DereferencePtr(limit),
	})
	if err != nil {
		return nil, err
	}

	key := reportCacheKey(storeId, "sales_by_product", time.Time(fromDate).Unix(), time.Time(toDate).Unix(), utils.DereferencePtr(limit))
	result, err := cachedReport(ctx, storeId, key, func() (*SalesByProductResponse, error) {

		db := config.GetDB()
		var rows []*SalesByProductRow
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"storeId":  storeId,
			"fromDate": fromDate,
			"toDate":   toDate,
			"limit":    limit,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}

		total := decimal.Zero
		for _, row := range rows {
			total = total.Add(row.TotalRevenue)
		}
		for _, row := range rows {
			if total.GreaterThan(decimal.Zero) {
				row.RevenueShare = row.TotalRevenue.DivRound(total, 6).Mul(decimal.NewFromInt(100)).Round(1)
			}
		}

		return &SalesByProductResponse{Rows: rows, TotalRevenue: total}, nil
	})
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "sales_by_product", started, nil)
	return result, nil
}
