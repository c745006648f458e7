package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/shopspring/decimal"
)

type CustomerSegmentRow struct {
	Segment      string          `json:"segment"`
	Customers    int             `json:"customers"`
	OrdersCount  int             `json:"ordersCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	RevenueShare decimal.Decimal `json:"revenueShare"`
}

type CustomerSegmentsResponse struct {
	Segments     []*CustomerSegmentRow `json:"segments"`
	TotalRevenue decimal.Decimal       `json:"totalRevenue"`
}

// Segment rules run on lifetime order counts:
// new = first order falls inside the window, returning = 2-4, loyal = 5+.
func GetCustomerSegmentsReport(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString) (*CustomerSegmentsResponse, error) {

	started := time.Now()

	sql := `
WITH WindowOrders AS (
SELECT
    o.customer_id,
    COUNT(*) AS orders_count,
    SUM(o.total_amount) AS total_revenue
FROM
    orders AS o
WHERE
    o.store_id = @storeId
        AND o.created_at BETWEEN @fromDate AND @toDate
        AND o.status <> 'cancelled'
        AND o.payment_status <> 'refunded'
GROUP BY o.customer_id
)
SELECT
    CASE
        WHEN c.first_order_at BETWEEN @fromDate AND @toDate THEN 'new'
        WHEN c.orders_count >= 5 THEN 'loyal'
        WHEN c.orders_count >= 2 THEN 'returning'
        ELSE 'new'
    END AS segment,
    COUNT(*) AS customers,
    SUM(wo.orders_count) AS orders_count,
    COALESCE(SUM(wo.total_revenue), 0) AS total_revenue
FROM
    WindowOrders AS wo
        JOIN
    customers AS c ON c.id = wo.customer_id
GROUP BY segment
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

	key := reportCacheKey(storeId, "customer_segments", time.Time(fromDate).Unix(), time.Time(toDate).Unix())
	result, err := cachedReport(ctx, storeId, key, func() (*CustomerSegmentsResponse, error) {

		db := config.GetDB()
		var rows []*CustomerSegmentRow
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"storeId":  storeId,
			"fromDate": fromDate,
			"toDate":   toDate,
		}).Scan(&rows).Error; err != nil {
			return nil, err
		}

		bySegment := make(map[string]*CustomerSegmentRow, len(rows))
		total := decimal.Zero
		for _, row := range rows {
			bySegment[row.Segment] = row
			total = total.Add(row.TotalRevenue)
		}

		// fixed segment order, empty segments included
		var segments []*CustomerSegmentRow
		for _, name := range []string{"new", "returning", "loyal"} {
			row, ok := bySegment[name]
			if !ok {
				row = &CustomerSegmentRow{Segment: name}
			}
			if total.GreaterThan(decimal.Zero) {
				row.RevenueShare = row.TotalRevenue.DivRound(total, 6).Mul(decimal.NewFromInt(100)).Round(1)
			}
			segments = append(segments, row)
		}

		return &CustomerSegmentsResponse{Segments: segments, TotalRevenue: total}, nil
	})
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "customer_segments", started, nil)
	return result, nil
}
