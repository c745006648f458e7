package reports

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/xuri/excelize/v2"
)

// ExportRevenueExcel builds a revenue-by-period workbook: a summary sheet
// with window totals and a detail sheet with one row per bucket.
// The caller streams the file as an attachment.
func ExportRevenueExcel(ctx context.Context, granularity string, fromDate models.MyDateString, toDate models.MyDateString) (*excelize.File, error) {

	report, err := GetRevenueByPeriodReport(ctx, granularity, fromDate, toDate)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	f.SetCellValue(summary, "A1", "Granularity")
	f.SetCellValue(summary, "B1", report.Granularity)
	f.SetCellValue(summary, "A2", "Orders")
	f.SetCellValue(summary, "B2", report.Totals.OrdersCount)
	f.SetCellValue(summary, "A3", "Gross Revenue")
	f.SetCellValue(summary, "B3", report.Totals.GrossRevenue.String())
	f.SetCellValue(summary, "A4", "Discounts")
	f.SetCellValue(summary, "B4", report.Totals.DiscountTotal.String())
	f.SetCellValue(summary, "A5", "Shipping")
	f.SetCellValue(summary, "B5", report.Totals.ShippingTotal.String())
	f.SetCellValue(summary, "A6", "Net Revenue")
	f.SetCellValue(summary, "B6", report.Totals.NetRevenue.String())
	f.SetCellValue(summary, "A7", "Average Order Value")
	f.SetCellValue(summary, "B7", report.Totals.AverageOrderValue.String())
	f.SetCellValue(summary, "A8", "Net Revenue Delta %")
	f.SetCellValue(summary, "B8", report.Totals.NetRevenueDelta.String())

	detail := "Revenue"
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}

	headers := []string{"Period", "Orders", "Gross Revenue", "Discounts", "Shipping", "Net Revenue", "AOV"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(detail, cell, h)
	}

	for i, bucket := range report.Buckets {
		row := i + 2
		f.SetCellValue(detail, "A"+fmt.Sprint(row), bucket.Period)
		f.SetCellValue(detail, "B"+fmt.Sprint(row), bucket.OrdersCount)
		f.SetCellValue(detail, "C"+fmt.Sprint(row), bucket.GrossRevenue.String())
		f.SetCellValue(detail, "D"+fmt.Sprint(row), bucket.DiscountTotal.String())
		f.SetCellValue(detail, "E"+fmt.Sprint(row), bucket.ShippingTotal.String())
		f.SetCellValue(detail, "F"+fmt.Sprint(row), bucket.NetRevenue.String())
		f.SetCellValue(detail, "G"+fmt.Sprint(row), bucket.AverageOrderValue.String())
	}

	return f, nil
}
