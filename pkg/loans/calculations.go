// Package loans provides common loan processing utilities.
package loans

import (
	"fmt"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Terms describes a loan quoted with a nominal monthly rate in percent, the
// way lenders publish consumer, vehicle and housing credit rates.
type Terms struct {
	Principal   decimal.Decimal
	MonthlyRate decimal.Decimal // percent per month, e.g. 1.89
	TermMonths  int
}

// Validate checks that the terms can be amortized.
func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return fmt.Errorf("principal must be positive, got %s", t.Principal)
	}
	if t.MonthlyRate.IsNegative() {
		return fmt.Errorf("monthly rate cannot be negative, got %s", t.MonthlyRate)
	}
	if t.TermMonths <= 0 {
		return fmt.Errorf("term must be at least one month, got %d", t.TermMonths)
	}
	return nil
}

// CalculateMonthlyPayment calculates the monthly installment using the
// standard annuity formula, rounded to currency precision.
func CalculateMonthlyPayment(t Terms) (decimal.Decimal, error) {
	if err := t.Validate(); err != nil {
		return decimal.Zero, err
	}

	n := decimal.NewFromInt(int64(t.TermMonths))
	if t.MonthlyRate.IsZero() {
		// For zero interest, simply divide the principal by term
		return mathutil.Round(t.Principal.Div(n)), nil
	}

	r := t.MonthlyRate.Div(hundred)
	power := decimal.NewFromInt(1).Add(r).Pow(n)
	payment := t.Principal.Mul(r).Mul(power).Div(power.Sub(decimal.NewFromInt(1)))
	return mathutil.Round(payment), nil
}

// CalculateTotalRepayment returns installment × term.
func CalculateTotalRepayment(monthlyPayment decimal.Decimal, termMonths int) decimal.Decimal {
	return mathutil.Round(monthlyPayment.Mul(decimal.NewFromInt(int64(termMonths))))
}
