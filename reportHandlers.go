package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/storefront_backend/middlewares"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/models/reports"
	"github.com/mmdatafocus/storefront_backend/utils"
)

// dateRangeQuery reads from/to (YYYY-MM-DD, store-local) with a 30 day default.
func dateRangeQuery(c *gin.Context) (models.MyDateString, models.MyDateString, bool) {
	from, to := utils.GetLastDaysRange(30)

	if v := strings.TrimSpace(c.Query("from")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be YYYY-MM-DD"})
			return models.MyDateString{}, models.MyDateString{}, false
		}
		from = parsed
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be YYYY-MM-DD"})
			return models.MyDateString{}, models.MyDateString{}, false
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return models.MyDateString{}, models.MyDateString{}, false
	}
	return models.MyDateString(from), models.MyDateString(to), true
}

func registerReportRoutes(g *gin.RouterGroup) {
	session := g.Group("/reports")
	session.Use(middlewares.RequireSession())

	session.GET("/revenue", func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		granularity := strings.TrimSpace(c.Query("granularity"))
		report, err := reports.GetRevenueByPeriodReport(c.Request.Context(), granularity, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, report)
	})

	session.GET("/products", func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		report, err := reports.GetSalesByProductReport(c.Request.Context(), from, to, queryLimit(c))
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, report)
	})

	session.GET("/segments", func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		report, err := reports.GetCustomerSegmentsReport(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, report)
	})

	session.GET("/funnel", func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		report, err := reports.GetConversionFunnelReport(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, report)
	})

	session.GET("/dashboard", func(c *gin.Context) {
		report, err := reports.GetDashboardReport(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		respondData(c, report)
	})

	session.GET("/revenue/export", func(c *gin.Context) {
		from, to, ok := dateRangeQuery(c)
		if !ok {
			return
		}
		granularity := strings.TrimSpace(c.Query("granularity"))
		file, err := reports.ExportRevenueExcel(c.Request.Context(), granularity, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := fmt.Sprintf("revenue-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			_ = c.Error(err)
		}
	})
}
