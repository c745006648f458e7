package utils

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// Voucher/discount validation failures, surfaced verbatim to the storefront.
var (
	ErrInvalidVoucherCode   = errors.New("invalid voucher code")
	ErrVoucherInactive      = errors.New("this voucher code is no longer active")
	ErrDiscountInactive     = errors.New("this discount is not active")
	ErrDiscountNotStarted   = errors.New("this discount has not started yet")
	ErrDiscountExpired      = errors.New("this discount has expired")
	ErrMinOrderAmountNotMet = errors.New("minimum order amount not met")
	ErrVoucherUsageLimit    = errors.New("this voucher code has reached its usage limit")
	ErrDiscountUsageLimit   = errors.New("this discount has reached its usage limit")
	ErrVoucherAlreadyUsed   = errors.New("this voucher code has already been used by this customer")
)

// MinOrderAmountError carries the threshold so the storefront can show it.
// errors.Is still matches ErrMinOrderAmountNotMet.
type MinOrderAmountError struct {
	Min decimal.Decimal
}

func (e *MinOrderAmountError) Error() string {
	return "minimum order amount of " + e.Min.String() + " not met"
}

func (e *MinOrderAmountError) Is(target error) bool {
	return target == ErrMinOrderAmountNotMet
}

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrCartCheckedOut    = errors.New("cart has already been checked out")
	ErrInsufficientStock = errors.New("insufficient stock")
)

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
