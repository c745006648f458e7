package models

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/mmdatafocus/storefront_backend/config"
)

// Per-store bloom filters short-circuit voucher lookups for codes that were
// never issued, keeping typo storms off the database. False positives just
// fall through to the DB query, so the filter is fail-open by construction.

const (
	voucherBloomCapacity = 100000
	voucherBloomFPRate   = 0.001
)

var (
	voucherBloomMu      sync.RWMutex
	voucherBloomByStore = make(map[string]*bloom.BloomFilter)
)

// VoucherMightExist reports whether the code could be in the store's set.
// Returns true when the feature is disabled or the filter is not built yet.
func VoucherMightExist(ctx context.Context, storeId string, code string) bool {
	if !config.VoucherBloomEnabled() {
		return true
	}

	voucherBloomMu.RLock()
	filter := voucherBloomByStore[storeId]
	voucherBloomMu.RUnlock()

	if filter == nil {
		// lazily build on first lookup
		if err := RebuildVoucherBloom(ctx, storeId); err != nil {
			return true
		}
		voucherBloomMu.RLock()
		filter = voucherBloomByStore[storeId]
		voucherBloomMu.RUnlock()
		if filter == nil {
			return true
		}
	}
	return filter.TestString(code)
}

// AddVoucherToBloom registers a freshly generated code. No-op until the
// store's filter has been built.
func AddVoucherToBloom(storeId string, code string) {
	if !config.VoucherBloomEnabled() {
		return
	}
	voucherBloomMu.Lock()
	defer voucherBloomMu.Unlock()
	if filter := voucherBloomByStore[storeId]; filter != nil {
		filter.AddString(code)
	}
}

// RebuildVoucherBloom reloads the store's active codes into a fresh filter.
// Called after deactivations, which cannot be expressed as filter deletes.
func RebuildVoucherBloom(ctx context.Context, storeId string) error {
	if !config.VoucherBloomEnabled() {
		return nil
	}

	db := config.GetDB()
	var codes []string
	if err := db.WithContext(ctx).Model(&VoucherCode{}).
		Where("store_id = ? AND is_active = true", storeId).
		Pluck("code", &codes).Error; err != nil {
		return err
	}

	filter := bloom.NewWithEstimates(voucherBloomCapacity, voucherBloomFPRate)
	for _, code := range codes {
		filter.AddString(code)
	}

	voucherBloomMu.Lock()
	voucherBloomByStore[storeId] = filter
	voucherBloomMu.Unlock()
	return nil
}
