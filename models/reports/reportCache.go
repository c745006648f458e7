package reports

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/sirupsen/logrus"
)

var logger = config.GetLogger()

func reportCacheTTL() time.Duration {
	// Env: REPORT_CACHE_TTL_SECONDS (default 120s)
	ttl := 120
	if v := strings.TrimSpace(os.Getenv("REPORT_CACHE_TTL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ttl = n
		}
	}
	return time.Duration(ttl) * time.Second
}

func reportSlowMs() int64 {
	// Env: REPORT_SLOW_MS (default 500ms)
	ms := int64(500)
	if v := strings.TrimSpace(os.Getenv("REPORT_SLOW_MS")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ms = n
		}
	}
	return ms
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]any) {
	d := time.Since(started)
	if d.Milliseconds() < reportSlowMs() {
		return
	}
	storeId, _ := utils.GetStoreIdFromContext(ctx)
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	logger.WithFields(logrus.Fields{
		"report":         name,
		"ms":             d.Milliseconds(),
		"store_id":       storeId,
		"correlation_id": cid,
		"extra":          extra,
	}).Warn("slow report")
}

func reportCacheKey(storeId string, name string, parts ...any) string {
	key := "Report:" + storeId + ":" + name
	for _, p := range parts {
		key += ":" + fmt.Sprint(p)
	}
	return key
}

// cachedReport wraps a report query with the env-gated redis cache and
// tags the entry so order writes can invalidate it.
func cachedReport[T any](ctx context.Context, storeId string, key string, compute func() (*T, error)) (*T, error) {

	if !config.ReportCacheEnabled() {
		return compute()
	}

	var cached T
	if exists, err := config.GetRedisObject(key, &cached); err == nil && exists {
		config.MetricReportCacheHitsTotal.Inc()
		return &cached, nil
	}
	config.MetricReportCacheMissesTotal.Inc()

	result, err := compute()
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisObjectTagged(key, result, reportCacheTTL(), storeId, utils.CacheTagReports); err != nil {
		return nil, err
	}
	return result, nil
}
