package reports

import (
	"context"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/shopspring/decimal"
)

type FunnelStep struct {
	Step       string          `json:"step"`
	Count      int             `json:"count"`
	Conversion decimal.Decimal `json:"conversion"` // vs previous step, percent
}

type ConversionFunnelResponse struct {
	Steps             []*FunnelStep   `json:"steps"`
	OverallConversion decimal.Decimal `json:"overallConversion"`
}

// Funnel: carts created -> carts with at least one item -> checked out -> paid.
func GetConversionFunnelReport(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString) (*ConversionFunnelResponse, error) {

	started := time.Now()

	sql := `
SELECT
    COUNT(*) AS carts_created,
    COALESCE(SUM(CASE WHEN ci.items_count > 0 THEN 1 ELSE 0 END), 0) AS carts_with_items,
    COALESCE(SUM(CASE WHEN c.status = 'checked_out' THEN 1 ELSE 0 END), 0) AS checked_out,
    COALESCE(SUM(CASE WHEN o.payment_status = 'paid' THEN 1 ELSE 0 END), 0) AS paid
FROM
    carts AS c
        LEFT JOIN
    (
        SELECT cart_id, COUNT(*) AS items_count
        FROM cart_items
        GROUP BY cart_id
    ) AS ci ON ci.cart_id = c.id
        LEFT JOIN
    orders AS o ON o.cart_id = c.id
WHERE
    c.store_id = @storeId
        AND c.created_at BETWEEN @fromDate AND @toDate
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

	key := reportCacheKey(storeId, "conversion_funnel", time.Time(fromDate).Unix(), time.Time(toDate).Unix())
	result, err := cachedReport(ctx, storeId, key, func() (*ConversionFunnelResponse, error) {

		var row struct {
			CartsCreated   int `json:"carts_created"`
			CartsWithItems int `json:"carts_with_items"`
			CheckedOut     int `json:"checked_out"`
			Paid           int `json:"paid"`
		}

		db := config.GetDB()
		if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
			"storeId":  storeId,
			"fromDate": fromDate,
			"toDate":   toDate,
		}).Scan(&row).Error; err != nil {
			return nil, err
		}

		counts := []struct {
			step  string
			count int
		}{
			{"carts_created", row.CartsCreated},
			{"carts_with_items", row.CartsWithItems},
			{"checked_out", row.CheckedOut},
			{"paid", row.Paid},
		}

		var steps []*FunnelStep
		for i, c := range counts {
			step := &FunnelStep{Step: c.step, Count: c.count}
			if i == 0 {
				step.Conversion = decimal.NewFromInt(100)
			} else if counts[i-1].count > 0 {
				step.Conversion = decimal.NewFromInt(int64(c.count)).
					DivRound(decimal.NewFromInt(int64(counts[i-1].count)), 6).
					Mul(decimal.NewFromInt(100)).Round(1)
			}
			steps = append(steps, step)
		}

		overall := decimal.Zero
		if row.CartsCreated > 0 {
			overall = decimal.NewFromInt(int64(row.Paid)).
				DivRound(decimal.NewFromInt(int64(row.CartsCreated)), 6).
				Mul(decimal.NewFromInt(100)).Round(1)
		}

		return &ConversionFunnelResponse{Steps: steps, OverallConversion: overall}, nil
	})
	if err != nil {
		return nil, err
	}

	logSlowReport(ctx, "conversion_funnel", started, nil)
	return result, nil
}
