package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultRate is the fallback price per diamond for groups that never had a
// rate set.
var DefaultRate = decimal.RequireFromString("2.3")

// DefaultMaxDeposit caps a single deposit request.
var DefaultMaxDeposit = decimal.NewFromInt(100000)

// MaxDiamonds caps a single diamond order.
const MaxDiamonds = 10000

// ValidateAmount rejects non-positive monetary amounts.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateDepositAmount rejects non-positive amounts and amounts above max.
func ValidateDepositAmount(amount, max decimal.Decimal) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	if max.IsPositive() && amount.GreaterThan(max) {
		return fmt.Errorf("%w: maximum deposit is %s", ErrAmountTooLarge, max.StringFixed(2))
	}
	return nil
}

// ValidateDiamonds rejects non-positive diamond counts and counts above
// MaxDiamonds.
func ValidateDiamonds(diamonds int64) error {
	if diamonds <= 0 || diamonds > MaxDiamonds {
		return ErrInvalidDiamonds
	}
	return nil
}

// ValidateRate rejects non-positive per-diamond rates.
func ValidateRate(rate decimal.Decimal) error {
	if rate.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidAmount)
	}
	return nil
}
