package config

import (
	"os"
	"strings"
)

func boolFlag(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// ReportCacheEnabled caches analytics report payloads in redis.
//
// Set via env:
// - REPORT_CACHE_ENABLED=true
// - REPORT_CACHE_TTL_SECONDS=300 (optional)
func ReportCacheEnabled() bool {
	return boolFlag("REPORT_CACHE_ENABLED")
}

// VoucherBloomEnabled consults a per-store bloom filter of active voucher
// codes before hitting the database. Fails open when the filter is missing.
//
// Set via env:
// - VOUCHER_BLOOM_ENABLED=true
func VoucherBloomEnabled() bool {
	return boolFlag("VOUCHER_BLOOM_ENABLED")
}

// StrictVoucherSingleUse restricts every voucher code to one redemption per
// customer regardless of the discount's per-customer limit.
//
// Set via env:
// - STRICT_VOUCHER_SINGLE_USE=true
func StrictVoucherSingleUse() bool {
	return boolFlag("STRICT_VOUCHER_SINGLE_USE")
}

// SkipMigrations skips GORM AutoMigrate at startup (pre-migrated schemas).
//
// Set via env:
// - SKIP_MIGRATIONS=true
func SkipMigrations() bool {
	return boolFlag("SKIP_MIGRATIONS")
}
