package models

import (
	"testing"

	"github.com/mmdatafocus/storefront_backend/utils"
	"github.com/shopspring/decimal"
)

func cartItem(price string, qty int) *CartItem {
	p, _ := decimal.NewFromString(price)
	return &CartItem{UnitPrice: p, Quantity: qty}
}

func TestComputeCartTotals(t *testing.T) {
	percentTen := &Discount{Type: DiscountTypePercentage, Value: decimal.NewFromInt(10), IsActive: utils.NewTrue()}
	fixedFifty := &Discount{Type: DiscountTypeFixed, Value: decimal.NewFromInt(50), IsActive: utils.NewTrue()}

	cases := []struct {
		name         string
		items        []*CartItem
		discount     *Discount
		taxRate      string
		taxInclusive bool
		shipping     string
		wantSub      string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "no discount no tax",
			items:        []*CartItem{cartItem("25.50", 2), cartItem("10", 1)},
			taxRate:      "0",
			shipping:     "5",
			wantSub:      "61",
			wantDiscount: "0",
			wantTax:      "0",
			wantTotal:    "66",
		},
		{
			name:         "percentage discount with exclusive tax",
			items:        []*CartItem{cartItem("100", 2)},
			discount:     percentTen,
			taxRate:      "5",
			shipping:     "10",
			wantSub:      "200",
			wantDiscount: "20",
			wantTax:      "9",
			wantTotal:    "199",
		},
		{
			name:         "inclusive tax is not added again",
			items:        []*CartItem{cartItem("105", 1)},
			taxRate:      "5",
			taxInclusive: true,
			shipping:     "0",
			wantSub:      "105",
			wantDiscount: "0",
			wantTax:      "5",
			wantTotal:    "105",
		},
		{
			name:         "fixed discount clamps at subtotal",
			items:        []*CartItem{cartItem("30", 1)},
			discount:     fixedFifty,
			taxRate:      "0",
			shipping:     "7",
			wantSub:      "30",
			wantDiscount: "30",
			wantTax:      "0",
			wantTotal:    "7",
		},
		{
			name:         "empty cart",
			items:        nil,
			taxRate:      "5",
			shipping:     "0",
			wantSub:      "0",
			wantDiscount: "0",
			wantTax:      "0",
			wantTotal:    "0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			taxRate, _ := decimal.NewFromString(tc.taxRate)
			shipping, _ := decimal.NewFromString(tc.shipping)

			got := computeCartTotals(tc.items, tc.discount, taxRate, tc.taxInclusive, shipping)

			check := func(field string, got decimal.Decimal, want string) {
				w, _ := decimal.NewFromString(want)
				if !got.Equal(w) {
					t.Errorf("%s = %s, want %s", field, got, want)
				}
			}
			check("SubTotal", got.SubTotal, tc.wantSub)
			check("DiscountAmount", got.DiscountAmount, tc.wantDiscount)
			check("TaxAmount", got.TaxAmount, tc.wantTax)
			check("ShippingAmount", got.ShippingAmount, tc.shipping)
			check("TotalAmount", got.TotalAmount, tc.wantTotal)
		})
	}
}
