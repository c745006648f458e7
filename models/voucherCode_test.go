package models

import (
	"errors"
	"testing"
	"time"

	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

func TestEvaluateVoucherRules(t *testing.T) {
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	minOrder := decimal.NewFromInt(100)

	baseVoucher := func() *VoucherCode {
		return &VoucherCode{Code: "SUMMER26", UsageLimit: 1, IsActive: utils.NewTrue()}
	}
	baseDiscount := func() *Discount {
		return &Discount{Name: "Summer", Type: DiscountTypePercentage, Value: decimal.NewFromInt(10), IsActive: utils.NewTrue()}
	}

	cases := []struct {
		name           string
		mutateVoucher  func(*VoucherCode)
		mutateDiscount func(*Discount)
		subTotal       decimal.Decimal
		usedByCustomer bool
		want           error
	}{
		{
			name:     "all rules pass",
			subTotal: decimal.NewFromInt(150),
		},
		{
			name:          "inactive voucher",
			mutateVoucher: func(v *VoucherCode) { v.IsActive = utils.NewFalse() },
			subTotal:      decimal.NewFromInt(150),
			want:          utils.ErrVoucherInactive,
		},
		{
			name:           "inactive discount",
			mutateDiscount: func(d *Discount) { d.IsActive = utils.NewFalse() },
			subTotal:       decimal.NewFromInt(150),
			want:           utils.ErrDiscountInactive,
		},
		{
			name:           "not started",
			mutateDiscount: func(d *Discount) { d.StartsAt = &future },
			subTotal:       decimal.NewFromInt(150),
			want:           utils.ErrDiscountNotStarted,
		},
		{
			name:           "expired",
			mutateDiscount: func(d *Discount) { d.EndsAt = &past },
			subTotal:       decimal.NewFromInt(150),
			want:           utils.ErrDiscountExpired,
		},
		{
			name:           "below minimum order",
			mutateDiscount: func(d *Discount) { d.MinOrderAmount = &minOrder },
			subTotal:       decimal.NewFromInt(99),
			want:           utils.ErrMinOrderAmountNotMet,
		},
		{
			name:           "minimum order met exactly",
			mutateDiscount: func(d *Discount) { d.MinOrderAmount = &minOrder },
			subTotal:       decimal.NewFromInt(100),
		},
		{
			name:          "voucher usage exhausted",
			mutateVoucher: func(v *VoucherCode) { v.UsedCount = 1 },
			subTotal:      decimal.NewFromInt(150),
			want:          utils.ErrVoucherUsageLimit,
		},
		{
			name:          "unlimited voucher ignores used count",
			mutateVoucher: func(v *VoucherCode) { v.UsageLimit = 0; v.UsedCount = 999 },
			subTotal:      decimal.NewFromInt(150),
		},
		{
			name:           "discount usage exhausted",
			mutateDiscount: func(d *Discount) { d.UsageLimit = 5; d.UsedCount = 5 },
			subTotal:       decimal.NewFromInt(150),
			want:           utils.ErrDiscountUsageLimit,
		},
		{
			name:           "already used by customer",
			subTotal:       decimal.NewFromInt(150),
			usedByCustomer: true,
			want:           utils.ErrVoucherAlreadyUsed,
		},
		{
			name:          "inactive voucher reported before usage limit",
			mutateVoucher: func(v *VoucherCode) { v.IsActive = utils.NewFalse(); v.UsedCount = 1 },
			subTotal:      decimal.NewFromInt(150),
			want:          utils.ErrVoucherInactive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			voucher := baseVoucher()
			discount := baseDiscount()
			if tc.mutateVoucher != nil {
				tc.mutateVoucher(voucher)
			}
			if tc.mutateDiscount != nil {
				tc.mutateDiscount(discount)
			}
			got := evaluateVoucherRules(voucher, discount, tc.subTotal, now, tc.usedByCustomer)
			if !errors.Is(got, tc.want) {
				t.Errorf("evaluateVoucherRules = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMinOrderAmountErrorShowsThreshold(t *testing.T) {
	minOrder := decimal.NewFromInt(100)
	voucher := &VoucherCode{Code: "SUMMER26", UsageLimit: 1, IsActive: utils.NewTrue()}
	discount := &Discount{
		Name:           "Summer",
		Type:           DiscountTypePercentage,
		Value:          decimal.NewFromInt(10),
		MinOrderAmount: &minOrder,
		IsActive:       utils.NewTrue(),
	}

	got := evaluateVoucherRules(voucher, discount, decimal.NewFromInt(99), time.Now(), false)
	if !errors.Is(got, utils.ErrMinOrderAmountNotMet) {
		t.Fatalf("evaluateVoucherRules = %v, want min order failure", got)
	}
	if want := "minimum order amount of 100 not met"; got.Error() != want {
		t.Errorf("error message = %q, want %q", got.Error(), want)
	}
}

func TestRandomVoucherCode(t *testing.T) {
	code, err := randomVoucherCode(10)
	if err != nil {
		t.Fatalf("randomVoucherCode: %v", err)
	}
	if len(code) != 10 {
		t.Fatalf("code length = %d, want 10", len(code))
	}
	for _, r := range code {
		if r == '0' || r == 'O' || r == '1' || r == 'I' {
			t.Errorf("code %q contains ambiguous character %q", code, r)
		}
	}
}
