package planner

import (
	"github.com/iwvelando/payment-planner/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// State classifies total financing against the target.
type State string

const (
	StateExact State = "exact"
	StateShort State = "short"
	StateOver  State = "over"
)

// Reconciliation is the outcome of matching financing sources to the target.
// Remaining is target minus financing: positive means more financing is
// needed, negative means financing has to be reduced.
type Reconciliation struct {
	Target             decimal.Decimal `json:"target"`
	DownPayments       decimal.Decimal `json:"downPayments"`
	PrimaryPrincipal   decimal.Decimal `json:"primaryPrincipal"`
	PersonalPrincipals decimal.Decimal `json:"personalPrincipals"`
	TotalFinancing     decimal.Decimal `json:"totalFinancing"`
	Remaining          decimal.Decimal `json:"remaining"`
	State              State           `json:"state"`
}

// Reconcile aggregates the financing sources and classifies the remainder
// with the currency epsilon.
func Reconcile(target, downPayments, primaryPrincipal, personalPrincipals decimal.Decimal) Reconciliation {
	financing := mathutil.Sum(downPayments, primaryPrincipal, personalPrincipals)
	remaining := target.Sub(financing)

	state := StateExact
	switch {
	case mathutil.IsPositive(remaining):
		state = StateShort
	case mathutil.IsNegative(remaining):
		state = StateOver
	}

	return Reconciliation{
		Target:             target,
		DownPayments:       downPayments,
		PrimaryPrincipal:   primaryPrincipal,
		PersonalPrincipals: personalPrincipals,
		TotalFinancing:     financing,
		Remaining:          remaining,
		State:              state,
	}
}

// IsExact reports whether financing matches the target.
func (r Reconciliation) IsExact() bool {
	return r.State == StateExact
}

// Err returns nil when exact and a ReconciliationMismatchError otherwise.
func (r Reconciliation) Err() error {
	if r.IsExact() {
		return nil
	}
	return &ReconciliationMismatchError{State: r.State, Remaining: r.Remaining}
}
