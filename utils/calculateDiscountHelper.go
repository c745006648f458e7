package utils

import "github.com/shopspring/decimal"

var decimalOneHundred = decimal.NewFromInt(100)

// CalculateDiscountAmount computes the amount taken off a subtotal.
// Percentage discounts round to 4 decimal places; the result is clamped so a
// fixed discount can never push a total negative.
func CalculateDiscountAmount(subTotal decimal.Decimal, value decimal.Decimal, discountType string) decimal.Decimal {

	var discountAmount decimal.Decimal

	if value.GreaterThan(decimal.Zero) {
		if discountType == "percentage" {
			discountAmount = subTotal.Mul(value).DivRound(decimalOneHundred, 4)
		} else {
			discountAmount = value
		}
	} else {
		discountAmount = decimal.Zero
	}

	if discountAmount.GreaterThan(subTotal) {
		discountAmount = subTotal
	}

	return discountAmount
}

// CalculateTaxAmount computes tax on an amount at the store's rate.
// Tax-inclusive extracts the tax already contained in the amount,
// tax-exclusive computes the tax to add on top.
func CalculateTaxAmount(totalAmount decimal.Decimal, taxRate decimal.Decimal, isTaxInclusive bool) decimal.Decimal {
	if taxRate.LessThanOrEqual(decimal.Zero) || totalAmount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	var taxAmount decimal.Decimal
	if isTaxInclusive {
		// (totalAmount / (100 + taxRate)) * taxRate
		taxAmount = totalAmount.DivRound(taxRate.Add(decimalOneHundred), 4).Mul(taxRate)
	} else {
		// (totalAmount / 100) * taxRate
		taxAmount = totalAmount.DivRound(decimalOneHundred, 4).Mul(taxRate)
	}

	return taxAmount
}

// CalculatePercentageDelta reports the change from previous to current as a
// percentage with one decimal place. A zero previous value reports 100 when
// anything was gained and 0 otherwise.
func CalculatePercentageDelta(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.GreaterThan(decimal.Zero) {
			return decimalOneHundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).DivRound(previous, 6).Mul(decimalOneHundred).Round(1)
}
