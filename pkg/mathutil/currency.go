// Package mathutil provides common decimal helpers for currency arithmetic.
package mathutil

import (
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

var tolerance = decimal.RequireFromString(constants.CurrencyTolerance)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// IsZero checks if a value is within the currency epsilon of zero. The bound
// is exclusive: 0.01 is not zero.
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThan(tolerance)
}

// IsPositive checks if a value is at least one currency unit above zero
func IsPositive(val decimal.Decimal) bool {
	return val.GreaterThanOrEqual(tolerance)
}

// IsNegative checks if a value is at least one currency unit below zero
func IsNegative(val decimal.Decimal) bool {
	return val.LessThanOrEqual(tolerance.Neg())
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Max returns the larger of two values
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
