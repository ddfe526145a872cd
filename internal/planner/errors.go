package planner

import (
	"errors"
	"fmt"

	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a plan or a plan line item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUpstreamUnavailable marks failures of quote, persistence or
	// notification collaborators.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Rule names a credit limit rule.
type Rule string

const (
	RulePersonalAmount     Rule = "personal-credit-amount"
	RulePersonalTerm       Rule = "personal-credit-term"
	RuleVehicleLoanToValue Rule = "vehicle-loan-to-value"
	RuleVehicleUnavailable Rule = "vehicle-credit-unavailable"
)

// LimitExceededError reports a violated credit tier or loan-to-value rule.
// Limit is the maximum permitted value: an amount for amount and LTV rules,
// a number of months for RulePersonalTerm.
type LimitExceededError struct {
	Rule      Rule
	Limit     decimal.Decimal
	Requested decimal.Decimal
}

func (e *LimitExceededError) Error() string {
	switch e.Rule {
	case RulePersonalTerm:
		msg := fmt.Sprintf("personal credit term of %s months exceeds the %s month maximum for this amount",
			e.Requested, e.Limit)
		term := int(e.Requested.IntPart())
		if allowed := MaxPersonalAmount(term); allowed.IsPositive() {
			return fmt.Sprintf("%s; over %d months at most %s can be borrowed", msg, term, format.Currency(allowed))
		}
		return fmt.Sprintf("%s; no personal credit is offered over %d months", msg, term)
	case RuleVehicleUnavailable:
		return "vehicle credit is not available for this price; use a personal credit instead"
	default:
		return fmt.Sprintf("%s: requested %s exceeds the maximum of %s",
			e.Rule, format.Currency(e.Requested), format.Currency(e.Limit))
	}
}

// MalformedQuoteError reports a provider record whose numeric field could
// not be parsed.
type MalformedQuoteError struct {
	LenderCode string
	Field      string
	Text       string
	Err        error
}

func (e *MalformedQuoteError) Error() string {
	return fmt.Sprintf("malformed quote from %q: field %s=%q", e.LenderCode, e.Field, e.Text)
}

func (e *MalformedQuoteError) Unwrap() error {
	return e.Err
}

// ReconciliationMismatchError blocks persistence of a plan that is short of
// or over its target.
type ReconciliationMismatchError struct {
	State     State
	Remaining decimal.Decimal
}

func (e *ReconciliationMismatchError) Error() string {
	if e.State == StateOver {
		return fmt.Sprintf("financing exceeds the target by %s; reduce it before saving",
			format.Currency(e.Remaining.Neg()))
	}
	return fmt.Sprintf("financing is %s short of the target; add funds before saving",
		format.Currency(e.Remaining))
}
