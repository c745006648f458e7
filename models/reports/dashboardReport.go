package reports

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

type DashboardWindow struct {
	OrdersCount       int             `json:"ordersCount"`
	NetRevenue        decimal.Decimal `json:"netRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	NewCustomers      int             `json:"newCustomers"`
}

type DashboardDeltas struct {
	OrdersDelta       decimal.Decimal `json:"ordersDelta"`
	NetRevenueDelta   decimal.Decimal `json:"netRevenueDelta"`
	NewCustomersDelta decimal.Decimal `json:"newCustomersDelta"`
}

type DashboardOrderRow struct {
	ID            int                  `json:"id"`
	OrderNumber   string               `json:"orderNumber"`
	CustomerName  string               `json:"customerName"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	CreatedAt     time.Time            `json:"createdAt"`
}

type DashboardResponse struct {
	Today         DashboardWindow      `json:"today"`
	ThisMonth     DashboardWindow      `json:"thisMonth"`
	PreviousMonth DashboardWindow      `json:"previousMonth"`
	Deltas        DashboardDeltas      `json:"deltas"`
	TopProducts   []*SalesByProductRow `json:"topProducts"`
	LatestOrders  []*DashboardOrderRow `json:"latestOrders"`
	LowStockCount int                  `json:"lowStockCount"`
}

func lowStockThreshold() int {
	threshold := 5
	if v := os.Getenv("LOW_STOCK_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			threshold = n
		}
	}
	return threshold
}

func queryDashboardWindow(ctx context.Context, storeId string, from time.Time, to time.Time) (DashboardWindow, error) {

	sql := `
SELECT
    COUNT(*) AS orders_count,
    COALESCE(SUM(o.total_amount), 0) AS net_revenue,
    COALESCE(SUM(CASE WHEN c.first_order_at = o.created_at THEN 1 ELSE 0 END), 0) AS new_customers
FROM
    orders AS o
        LEFT JOIN
    customers AS c ON c.id = o.customer_id
WHERE
    o.store_id = @storeId
        AND o.created_at BETWEEN @fromDate AND @toDate
        AND o.status <> 'cancelled'
        AND o.payment_status <> 'refunded'
`

	var window DashboardWindow
	db := config.GetDB()
	var row struct {
		OrdersCount  int             `json:"orders_count"`
		NetRevenue   decimal.Decimal `json:"net_revenue"`
		NewCustomers int             `json:"new_customers"`
	}
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"storeId":  storeId,
		"fromDate": from,
		"toDate":   to,
	}).Scan(&row).Error; err != nil {
		return window, err
	}

	window.OrdersCount = row.OrdersCount
	window.NetRevenue = row.NetRevenue
	window.NewCustomers = row.NewCustomers
	if row.OrdersCount > 0 {
		window.AverageOrderValue = row.NetRevenue.DivRound(decimal.NewFromInt(int64(row.OrdersCount)), 2)
	}
	return window, nil
}

func GetDashboardReport(ctx context.Context) (*DashboardResponse, error) {

	started := time.Now()

	store, err := models.GetStore(ctx)
	if err != nil {
		return nil, err
	}
	storeId := store.ID.String()

	loc, err := time.LoadLocation(store.Timezone)
	if err != nil {
		loc = time.UTC
	}
	now := time.Now().In(loc)

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc).UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).UTC()
	prevMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0).UTC()
	nowUTC := now.UTC()

	key := reportCacheKey(storeId, "dashboard", nowUTC.Format("2006-01-02-15"))
	result, err := cachedReport(ctx, storeId, key, func() (*DashboardResponse, error) {

		today, err := queryDashboardWindow(ctx, storeId, todayStart, nowUTC)
		if err != nil {
			return nil, err
		}
		thisMonth, err := queryDashboardWindow(ctx, storeId, monthStart, nowUTC)
		if err != nil {
			return nil, err
		}
		previousMonth, err := queryDashboardWindow(ctx, storeId, prevMonthStart, monthStart.Add(-time.Second))
		if err != nil {
			return nil, err
		}

		deltas := DashboardDeltas{
			OrdersDelta: utils.CalculatePercentageDelta(
				decimal.NewFromInt(int64(thisMonth.OrdersCount)), decimal.NewFromInt(int64(previousMonth.OrdersCount))),
			NetRevenueDelta: utils.CalculatePercentageDelta(thisMonth.NetRevenue, previousMonth.NetRevenue),
			NewCustomersDelta: utils.CalculatePercentageDelta(
				decimal.NewFromInt(int64(thisMonth.NewCustomers)), decimal.NewFromInt(int64(previousMonth.NewCustomers))),
		}

		db := config.GetDB()

		// top products over the trailing 30 days
		var topProducts []*SalesByProductRow
		if err := db.WithContext(ctx).Raw(`
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
        AND o.created_at >= @fromDate
        AND o.status <> 'cancelled'
        AND o.payment_status <> 'refunded'
GROUP BY oi.product_id , oi.product_name , oi.sku
ORDER BY total_revenue DESC
LIMIT 5
`, map[string]interface{}{
			"storeId":  storeId,
			"fromDate": nowUTC.AddDate(0, 0, -30),
		}).Scan(&topProducts).Error; err != nil {
			return nil, err
		}

		var latestOrders []*DashboardOrderRow
		if err := db.WithContext(ctx).Raw(`
SELECT
    id, order_number, customer_name, status, payment_status, total_amount, created_at
FROM
    orders
WHERE
    store_id = @storeId
ORDER BY created_at DESC , id DESC
LIMIT 10
`, map[string]interface{}{
			"storeId": storeId,
		}).Scan(&latestOrders).Error; err != nil {
			return nil, err
		}

		var lowStockCount int64
		if err := db.WithContext(ctx).Model(&models.Product{}).
			Where("store_id = ?", storeId).
			Where("track_stock = ?", true).
			Where("status = ?", models.ProductStatusActive).
			Where("stock_quantity <= ?", lowStockThreshold()).
			Count(&lowStockCount).Error; err != nil {
			return nil, err
		}

		return &DashboardResponse{
			Today:         today,
			ThisMonth:     thisMonth,
			PreviousMonth: previousMonth,
			Deltas:        deltas,
			TopProducts:   topProducts,
			LatestOrders:  latestOrders,
			LowStockCount: int(lowStockCount),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "dashboard", started, nil)
	return result, nil
}
