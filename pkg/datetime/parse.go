// Package datetime provides calendar-month helpers used to label repayment
// periods.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/payment-planner/pkg/constants"
)

// DateTimeLayout is the calendar month format, e.g. "2026-11".
const DateTimeLayout = constants.DateTimeLayout

// ValidateMonth reports whether value is a well-formed calendar month.
func ValidateMonth(value string) error {
	if _, err := time.Parse(DateTimeLayout, value); err != nil {
		return fmt.Errorf("invalid month %q, expected YYYY-MM: %w", value, err)
	}
	return nil
}

// MonthLabel returns the calendar month of the 1-based repayment month n for a
// plan whose first installment falls in start.
func MonthLabel(start string, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("repayment month must be 1 or greater, got %d", n)
	}
	first, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return "", fmt.Errorf("invalid start month %q: %w", start, err)
	}
	return first.AddDate(0, n-1, 0).Format(DateTimeLayout), nil
}
