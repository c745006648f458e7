// backfill-daily-summary rebuilds store_daily_summaries from orders, for one
// store or all of them. Safe to rerun; the recompute is an upsert.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
	"github.com/mmdatafocus/storefront_backend/utils"
	"gorm.io/gorm"
)

func main() {
	storeID := flag.String("store-id", "", "Optional: backfill only one store (uuid string). If empty, backfills all stores.")
	from := flag.String("from", "", "Optional: start date (YYYY-MM-DD, store-local). Defaults to the store's first order date.")
	to := flag.String("to", "", "Optional: end date (YYYY-MM-DD, store-local). Defaults to today in the store timezone.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 0)
	ctx = utils.SetUserNameInContext(ctx, "BackfillDailySummary")
	ctx = utils.SetSkipTenantScopeInContext(ctx, true)

	var stores []models.Store
	query := db.WithContext(ctx).Model(&models.Store{})
	if strings.TrimSpace(*storeID) != "" {
		query = query.Where("id = ?", strings.TrimSpace(*storeID))
	}
	if err := query.Find(&stores).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list stores: %v\n", err)
		os.Exit(1)
	}
	if len(stores) == 0 {
		fmt.Fprintln(os.Stderr, "no stores found to backfill")
		return
	}

	for _, store := range stores {
		sid := store.ID.String()
		loc, err := time.LoadLocation(store.Timezone)
		if err != nil {
			loc = time.UTC
		}

		start := strings.TrimSpace(*from)
		if start == "" {
			var first models.Order
			err := db.WithContext(ctx).Model(&models.Order{}).
				Where("store_id = ?", sid).
				Order("created_at asc").
				Select("created_at").
				First(&first).Error
			if err == gorm.ErrRecordNotFound {
				fmt.Printf("store %s: no orders, skipping\n", sid)
				continue
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "store %s: failed to find first order: %v\n", sid, err)
				continue
			}
			start = first.CreatedAt.In(loc).Format("2006-01-02")
		}

		end := strings.TrimSpace(*to)
		if end == "" {
			end = time.Now().In(loc).Format("2006-01-02")
		}

		fmt.Printf("Backfilling store_daily_summaries store=%s from=%s to=%s\n", sid, start, end)

		if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return models.RecomputeDailySummaries(ctx, tx, sid, store.Timezone, start, end)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "store %s backfill failed: %v\n", sid, err)
			continue
		}
	}

	fmt.Println("Backfill complete")
}
