// cart-sweeper marks stale active carts as abandoned. Meant to run on a
// schedule (cron or Cloud Scheduler). A redis lock keeps concurrent runs out.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/models"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	config.ConnectRedisWithRetry()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "cartsweeper", 5*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			fmt.Println("another sweep is running, exiting")
			return
		}
		if err == nil {
			defer lock.Release(context.Background())
		}
	}

	count, err := models.MarkAbandonedCarts(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sweep failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Marked %d carts abandoned\n", count)
}
