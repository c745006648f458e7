package utils_test

import (
	"testing"

	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateDiscountAmount(t *testing.T) {
	cases := []struct {
		name         string
		subTotal     string
		value        string
		discountType string
		want         string
	}{
		{"percentage", "200", "10", "percentage", "20"},
		{"percentage rounds to 4dp", "99.99", "7.5", "percentage", "7.4993"},
		{"fixed", "200", "50", "fixed", "50"},
		{"fixed clamped to subtotal", "30", "50", "fixed", "30"},
		{"zero value", "200", "0", "percentage", "0"},
		{"negative value treated as zero", "200", "-10", "fixed", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := utils.CalculateDiscountAmount(dec(tc.subTotal), dec(tc.value), tc.discountType)
			if !got.Equal(dec(tc.want)) {
				t.Errorf("CalculateDiscountAmount(%s, %s, %s) = %s, want %s",
					tc.subTotal, tc.value, tc.discountType, got, tc.want)
			}
		})
	}
}

func TestCalculateTaxAmount(t *testing.T) {
	cases := []struct {
		name      string
		amount    string
		rate      string
		inclusive bool
		want      string
	}{
		{"exclusive adds on top", "100", "5", false, "5"},
		{"inclusive extracts contained tax", "105", "5", true, "5"},
		{"zero rate", "100", "0", false, "0"},
		{"zero amount", "0", "5", true, "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := utils.CalculateTaxAmount(dec(tc.amount), dec(tc.rate), tc.inclusive)
			if !got.Equal(dec(tc.want)) {
				t.Errorf("CalculateTaxAmount(%s, %s, %v) = %s, want %s",
					tc.amount, tc.rate, tc.inclusive, got, tc.want)
			}
		})
	}
}

func TestCalculatePercentageDelta(t *testing.T) {
	cases := []struct {
		name     string
		current  string
		previous string
		want     string
	}{
		{"growth", "150", "100", "50"},
		{"decline", "75", "100", "-25"},
		{"from zero with gain", "10", "0", "100"},
		{"from zero without gain", "0", "0", "0"},
		{"rounds to one decimal", "110", "300", "-63.3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := utils.CalculatePercentageDelta(dec(tc.current), dec(tc.previous))
			if !got.Equal(dec(tc.want)) {
				t.Errorf("CalculatePercentageDelta(%s, %s) = %s, want %s",
					tc.current, tc.previous, got, tc.want)
			}
		})
	}
}
