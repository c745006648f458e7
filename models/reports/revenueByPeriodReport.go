package reports

import (
	"context"
	"errors"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

type RevenueBucket struct {
	Period            string          `json:"period"`
	OrdersCount       int             `json:"ordersCount"`
	GrossRevenue      decimal.Decimal `json:"grossRevenue"`
	DiscountTotal     decimal.Decimal `json:"discountTotal"`
	ShippingTotal     decimal.Decimal `json:"shippingTotal"`
	NetRevenue        decimal.Decimal `json:"netRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
}

type RevenueTotals struct {
	OrdersCount       int             `json:"ordersCount"`
	GrossRevenue      decimal.Decimal `json:"grossRevenue"`
	DiscountTotal     decimal.Decimal `json:"discountTotal"`
	ShippingTotal     decimal.Decimal `json:"shippingTotal"`
	NetRevenue        decimal.Decimal `json:"netRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	OrdersDelta       decimal.Decimal `json:"ordersDelta"`
	NetRevenueDelta   decimal.Decimal `json:"netRevenueDelta"`
}

type RevenueByPeriodResponse struct {
	Granularity string           `json:"granularity"`
	Buckets     []*RevenueBucket `json:"buckets"`
	Totals      RevenueTotals    `json:"totals"`
}

// periodExpr buckets an order's created_at into the store's local
// day, ISO week (labelled by its Monday) or month.
const revenueSQLTemplate = `
SELECT
    {{- if eq .granularity "week" }}
    DATE_FORMAT(DATE_SUB(DATE(CONVERT_TZ(o.created_at, 'UTC', @timezone)), INTERVAL WEEKDAY(CONVERT_TZ(o.created_at, 'UTC', @timezone)) DAY), '%Y-%m-%d') AS period,
    {{- else if eq .granularity "month" }}
    DATE_FORMAT(CONVERT_TZ(o.created_at, 'UTC', @timezone), '%Y-%m-01') AS period,
    {{- else }}
    DATE_FORMAT(CONVERT_TZ(o.created_at, 'UTC', @timezone), '%Y-%m-%d') AS period,
    {{- end }}
    COUNT(*) AS orders_count,
    COALESCE(SUM(o.sub_total), 0) AS gross_revenue,
    COALESCE(SUM(o.discount_amount), 0) AS discount_total,
    COALESCE(SUM(o.shipping_amount), 0) AS shipping_total,
    COALESCE(SUM(o.total_amount), 0) AS net_revenue
FROM
    orders AS o
WHERE
    o.store_id = @storeId
        AND o.created_at BETWEEN @fromDate AND @toDate
        AND o.status <> 'cancelled'
        AND o.payment_status <> 'refunded'
GROUP BY period
ORDER BY period
`

func queryRevenueBuckets(ctx context.Context, storeId string, timezone string, granularity string, from time.Time, to time.Time) ([]*RevenueBucket, error) {

	sql, err := utils.ExecTemplate(revenueSQLTemplate, map[string]interface{}{
		"granularity": granularity,
	})
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var rows []*RevenueBucket
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"storeId":  storeId,
		"timezone": timezone,
		"fromDate": from,
		"toDate":   to,
	}).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		if row.OrdersCount > 0 {
			row.AverageOrderValue = row.NetRevenue.DivRound(decimal.NewFromInt(int64(row.OrdersCount)), 2)
		}
	}
	return rows, nil
}

func sumBuckets(rows []*RevenueBucket) RevenueTotals {
	var totals RevenueTotals
	for _, row := range rows {
		totals.OrdersCount += row.OrdersCount
		totals.GrossRevenue = totals.GrossRevenue.Add(row.GrossRevenue)
		totals.DiscountTotal = totals.DiscountTotal.Add(row.DiscountTotal)
		totals.ShippingTotal = totals.ShippingTotal.Add(row.ShippingTotal)
		totals.NetRevenue = totals.NetRevenue.Add(row.NetRevenue)
	}
	if totals.OrdersCount > 0 {
		totals.AverageOrderValue = totals.NetRevenue.DivRound(decimal.NewFromInt(int64(totals.OrdersCount)), 2)
	}
	return totals
}

// zeroFillBuckets inserts empty buckets for periods with no orders so the
// dashboard charts get a continuous series.
func zeroFillBuckets(rows []*RevenueBucket, granularity string, fromLocal time.Time, toLocal time.Time) []*RevenueBucket {

	byPeriod := make(map[string]*RevenueBucket, len(rows))
	for _, row := range rows {
		byPeriod[row.Period] = row
	}

	var filled []*RevenueBucket
	cursor := time.Date(fromLocal.Year(), fromLocal.Month(), fromLocal.Day(), 0, 0, 0, 0, fromLocal.Location())
	end := time.Date(toLocal.Year(), toLocal.Month(), toLocal.Day(), 0, 0, 0, 0, toLocal.Location())

	switch granularity {
	case "week":
		// snap to Monday
		offset := (int(cursor.Weekday()) + 6) % 7
		cursor = cursor.AddDate(0, 0, -offset)
	case "month":
		cursor = time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, cursor.Location())
	}

	for !cursor.After(end) {
		var key string
		switch granularity {
		case "month":
			key = cursor.Format("2006-01") + "-01"
		default:
			key = cursor.Format("2006-01-02")
		}

		if row, ok := byPeriod[key]; ok {
			filled = append(filled, row)
		} else {
			filled = append(filled, &RevenueBucket{Period: key})
		}

		switch granularity {
		case "week":
			cursor = cursor.AddDate(0, 0, 7)
		case "month":
			cursor = cursor.AddDate(0, 1, 0)
		default:
			cursor = cursor.AddDate(0, 0, 1)
		}
	}
	return filled
}

func GetRevenueByPeriodReport(ctx context.Context, granularity string, fromDate models.MyDateString, toDate models.MyDateString) (*RevenueByPeriodResponse, error) {

	started := time.Now()

	switch granularity {
	case "day", "week", "month":
	case "":
		granularity = "day"
	default:
		return nil, errors.New("granularity must be day, week or month")
	}

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
	from := time.Time(fromDate)
	to := time.Time(toDate)
	if to.Before(from) {
		return nil, errors.New("to date must not be before from date")
	}

	key := reportCacheKey(storeId, "revenue", granularity, from.Unix(), to.Unix())
	result, err := cachedReport(ctx, storeId, key, func() (*RevenueByPeriodResponse, error) {

		rows, err := queryRevenueBuckets(ctx, storeId, store.Timezone, granularity, from, to)
		if err != nil {
			return nil, err
		}

		loc, err := time.LoadLocation(store.Timezone)
		if err != nil {
			loc = time.UTC
		}
		buckets := zeroFillBuckets(rows, granularity, from.In(loc), to.In(loc))
		totals := sumBuckets(rows)

		prevFrom, prevTo := utils.PreviousWindow(from, to)
		prevRows, err := queryRevenueBuckets(ctx, storeId, store.Timezone, granularity, prevFrom, prevTo)
		if err != nil {
			return nil, err
		}
		prevTotals := sumBuckets(prevRows)

		totals.OrdersDelta = utils.CalculatePercentageDelta(
			decimal.NewFromInt(int64(totals.OrdersCount)), decimal.NewFromInt(int64(prevTotals.OrdersCount)))
		totals.NetRevenueDelta = utils.CalculatePercentageDelta(totals.NetRevenue, prevTotals.NetRevenue)

		return &RevenueByPeriodResponse{
			Granularity: granularity,
			Buckets:     buckets,
			Totals:      totals,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "revenue_by_period", started, map[string]any{"granularity": granularity})
	return result, nil
}
