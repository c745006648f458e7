package models

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/mmdatafocus/storefront_backend/config"
	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// voucherCodeCharset leaves out 0/O and 1/I so printed codes cannot be misread.
const voucherCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	maxVoucherBatchSize  = 500
	minVoucherCodeLength = 8
	maxVoucherCodeLength = 12
)

type VoucherCode struct {
	ID         int       `gorm:"primary_key" json:"id"`
	StoreId    string    `gorm:"index;uniqueIndex:idx_voucher_store_code;not null" json:"store_id"`
	DiscountId int       `gorm:"index;not null" json:"discount_id"`
	Code       string    `gorm:"uniqueIndex:idx_voucher_store_code;size:12;not null" json:"code"`
	UsageLimit int       `gorm:"not null;default:1" json:"usage_limit"`
	UsedCount  int       `gorm:"not null;default:0" json:"used_count"`
	IsActive   *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (v VoucherCode) GetStoreId() string {
	return v.StoreId
}

// returns decoded cursor string
func (v VoucherCode) GetCursor() string {
	return v.CreatedAt.String()
}

// VoucherRedemption records one successful use of a code on an order.
type VoucherRedemption struct {
	ID            int       `gorm:"primary_key" json:"id"`
	StoreId       string    `gorm:"index;not null" json:"store_id"`
	VoucherCodeId int       `gorm:"index;not null" json:"voucher_code_id"`
	DiscountId    int       `gorm:"index;not null" json:"discount_id"`
	OrderId       int       `gorm:"index;not null" json:"order_id"`
	CustomerId    int       `gorm:"index" json:"customer_id"`
	Email         string    `gorm:"size:100" json:"email"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type GenerateVoucherCodesInput struct {
	DiscountId int `json:"discount_id" binding:"required"`
	Count      int `json:"count" binding:"required"`
	Length     int `json:"length"`
	UsageLimit int `json:"usage_limit"`
}

func randomVoucherCode(length int) (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(voucherCodeCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(voucherCodeCharset[n.Int64()])
	}
	return sb.String(), nil
}

// GenerateVoucherCodes mints a batch of unique codes for a discount.
// Collisions with existing codes are retried, never returned.
func GenerateVoucherCodes(ctx context.Context, input *GenerateVoucherCodesInput) ([]*VoucherCode, error) {

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	if input.Count <= 0 || input.Count > maxVoucherBatchSize {
		return nil, errors.New("count must be between 1 and 500")
	}
	length := input.Length
	if length == 0 {
		length = minVoucherCodeLength
	}
	if length < minVoucherCodeLength || length > maxVoucherCodeLength {
		return nil, errors.New("length must be between 8 and 12")
	}
	usageLimit := input.UsageLimit
	if usageLimit <= 0 {
		usageLimit = 1
	}
	if err := utils.ValidateResourceId[Discount](ctx, storeId, input.DiscountId); err != nil {
		return nil, errors.New("discount not found")
	}

	db := config.GetDB()
	seen := make(map[string]bool, input.Count)
	codes := make([]*VoucherCode, 0, input.Count)
	for len(codes) < input.Count {
		code, err := randomVoucherCode(length)
		if err != nil {
			return nil, err
		}
		if seen[code] {
			continue
		}
		var count int64
		if err := db.WithContext(ctx).Model(&VoucherCode{}).
			Where("store_id = ? AND code = ?", storeId, code).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			continue
		}
		seen[code] = true
		codes = append(codes, &VoucherCode{
			StoreId:    storeId,
			DiscountId: input.DiscountId,
			Code:       code,
			UsageLimit: usageLimit,
			IsActive:   utils.NewTrue(),
		})
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&codes).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := createActivity(tx.WithContext(ctx), "CREATE", input.DiscountId, "voucher_codes", nil, nil,
		"generated voucher codes"); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	for _, code := range codes {
		AddVoucherToBloom(storeId, code.Code)
	}
	if err := utils.InvalidateCacheTags(storeId, utils.CacheTagDiscounts); err != nil {
		return nil, err
	}

	return codes, nil
}

func GetVoucherCodes(ctx context.Context, discountId int) ([]*VoucherCode, error) {

	db := config.GetDB()
	var results []*VoucherCode

	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	err := db.WithContext(ctx).
		Where("store_id = ? AND discount_id = ?", storeId, discountId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func ToggleActiveVoucherCode(ctx context.Context, id int, isActive bool) (*VoucherCode, error) {
	storeId, ok := utils.GetStoreIdFromContext(ctx)
	if !ok || storeId == "" {
		return nil, errors.New("store id is required")
	}

	result, err := ToggleActiveModel[VoucherCode](ctx, storeId, id, isActive)
	if err != nil {
		return nil, err
	}
	// deactivation shrinks the valid set, so the filter must be rebuilt
	if err := RebuildVoucherBloom(ctx, storeId); err != nil {
		return nil, err
	}
	return result, nil
}

// evaluateVoucherRules runs the rule chain on an already-loaded voucher and
// discount pair. Rules fire in a fixed order so the shopper always sees the
// earliest failure.
func evaluateVoucherRules(voucher *VoucherCode, discount *Discount, subTotal decimal.Decimal, now time.Time, usedByCustomer bool) error {

	if !utils.DereferencePtr(voucher.IsActive, false) {
		return utils.ErrVoucherInactive
	}
	if !utils.DereferencePtr(discount.IsActive, false) {
		return utils.ErrDiscountInactive
	}
	if discount.StartsAt != nil && now.Before(*discount.StartsAt) {
		return utils.ErrDiscountNotStarted
	}
	if discount.EndsAt != nil && now.After(*discount.EndsAt) {
		return utils.ErrDiscountExpired
	}
	if discount.MinOrderAmount != nil && subTotal.LessThan(*discount.MinOrderAmount) {
		return &utils.MinOrderAmountError{Min: *discount.MinOrderAmount}
	}
	if voucher.UsageLimit > 0 && voucher.UsedCount >= voucher.UsageLimit {
		return utils.ErrVoucherUsageLimit
	}
	if discount.UsageLimit > 0 && discount.UsedCount >= discount.UsageLimit {
		return utils.ErrDiscountUsageLimit
	}
	if usedByCustomer {
		return utils.ErrVoucherAlreadyUsed
	}
	return nil
}

// ValidateVoucherCode resolves a shopper-entered code to its voucher and
// discount, running the full rule chain. customerEmail may be empty for
// anonymous carts; the single-use-per-customer rule is then skipped.
func ValidateVoucherCode(ctx context.Context, storeId string, code string, subTotal decimal.Decimal, customerEmail string) (*VoucherCode, *Discount, error) {

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil, utils.ErrInvalidVoucherCode
	}

	// negative lookup pre-filter, fail-open
	if !VoucherMightExist(ctx, storeId, code) {
		config.MetricVoucherValidationsTotal.WithLabelValues("bloom_miss").Inc()
		return nil, nil, utils.ErrInvalidVoucherCode
	}

	db := config.GetDB()
	var voucher VoucherCode
	err := db.WithContext(ctx).
		Where("store_id = ? AND code = ?", storeId, code).
		First(&voucher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config.MetricVoucherValidationsTotal.WithLabelValues("not_found").Inc()
			return nil, nil, utils.ErrInvalidVoucherCode
		}
		return nil, nil, err
	}

	var discount Discount
	if err := db.WithContext(ctx).
		Where("store_id = ? AND id = ?", storeId, voucher.DiscountId).
		First(&discount).Error; err != nil {
		return nil, nil, utils.ErrInvalidVoucherCode
	}

	usedByCustomer := false
	if config.StrictVoucherSingleUse() && customerEmail != "" {
		var count int64
		if err := db.WithContext(ctx).Model(&VoucherRedemption{}).
			Where("store_id = ? AND voucher_code_id = ? AND email = ?", storeId, voucher.ID, strings.ToLower(customerEmail)).
			Count(&count).Error; err != nil {
			return nil, nil, err
		}
		usedByCustomer = count > 0
	}

	if err := evaluateVoucherRules(&voucher, &discount, subTotal, time.Now(), usedByCustomer); err != nil {
		config.MetricVoucherValidationsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, err
	}

	config.MetricVoucherValidationsTotal.WithLabelValues("valid").Inc()
	return &voucher, &discount, nil
}

// RedeemVoucher burns one use of the code and its discount inside the
// checkout transaction. Guarded UPDATEs keep concurrent checkouts from
// exceeding either limit.
func RedeemVoucher(ctx context.Context, tx *gorm.DB, voucher *VoucherCode, discount *Discount, orderId int, customerId int, email string) error {

	result := tx.WithContext(ctx).Model(&VoucherCode{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", voucher.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrVoucherUsageLimit
	}

	result = tx.WithContext(ctx).Model(&Discount{}).
		Where("id = ? AND (usage_limit = 0 OR used_count < usage_limit)", discount.ID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return utils.ErrDiscountUsageLimit
	}

	redemption := VoucherRedemption{
		StoreId:       voucher.StoreId,
		VoucherCodeId: voucher.ID,
		DiscountId:    discount.ID,
		OrderId:       orderId,
		CustomerId:    customerId,
		Email:         strings.ToLower(email),
	}
	if err := tx.WithContext(ctx).Create(&redemption).Error; err != nil {
		return err
	}

	return PublishStorefrontEvent(ctx, tx, voucher.StoreId, EventTypeVoucherRedeemed, redemption.ID, ReferenceTypeVoucherCode, redemption)
}

// ReverseVoucherRedemption returns a use when an order is cancelled.
func ReverseVoucherRedemption(ctx context.Context, tx *gorm.DB, storeId string, orderId int) error {

	var redemption VoucherRedemption
	err := tx.WithContext(ctx).
		Where("store_id = ? AND order_id = ?", storeId, orderId).
		First(&redemption).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if err := tx.WithContext(ctx).Model(&VoucherCode{}).
		Where("id = ? AND used_count > 0", redemption.VoucherCodeId).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Model(&Discount{}).
		Where("id = ? AND used_count > 0", redemption.DiscountId).
		UpdateColumn("used_count", gorm.Expr("used_count - 1")).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&redemption).Error
}
