// Package testutil provides common plan fixtures for tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/shopspring/decimal"
)

// Offer returns a credit offer whose total repayment is installment × term.
func Offer(lenderCode, principal string, term int, installment string) planner.CreditOffer {
	amount := decimal.RequireFromString(installment)
	return planner.CreditOffer{
		LenderCode:         lenderCode,
		LenderName:         planner.DefaultLenders.DisplayName(lenderCode),
		Principal:          decimal.RequireFromString(principal),
		Rate:               decimal.RequireFromString("2.99"),
		MonthlyInstallment: amount,
		TotalRepayment:     amount.Mul(decimal.NewFromInt(int64(term))),
		TermMonths:         term,
	}
}

// ExactVehiclePlan returns a named vehicle plan of ₺800.000 financed exactly
// by a ₺300.000 down payment, a 36 month ₺400.000 vehicle credit paying
// ₺16.000 and a 12 month ₺100.000 personal credit paying ₺9.000. Monthly
// income is ₺40.000.
func ExactVehiclePlan(t testing.TB) *planner.AssetPlan {
	t.Helper()
	plan, err := planner.NewAssetPlan(planner.ModeCreate, planner.CategoryVehicle,
		decimal.NewFromInt(800000), planner.DefaultProfiles()[planner.ModeCreate])
	if err != nil {
		t.Fatalf("NewAssetPlan: %v", err)
	}
	plan.SetName("Family car")
	if _, err := plan.AddDownPayment(decimal.NewFromInt(300000), "savings"); err != nil {
		t.Fatalf("AddDownPayment: %v", err)
	}
	if _, err := plan.SelectPrimary(Offer("garanti-bbva", "400000", 36, "16000")); err != nil {
		t.Fatalf("SelectPrimary: %v", err)
	}
	if _, err := plan.AddPersonal(Offer("akbank", "100000", 12, "9000")); err != nil {
		t.Fatalf("AddPersonal: %v", err)
	}
	if _, err := plan.AddIncome(decimal.NewFromInt(40000), "salary"); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	if !plan.IsExact() {
		t.Fatalf("fixture is not exact: %+v", plan.Reconciliation())
	}
	return plan
}

// ShortVehiclePlan returns ExactVehiclePlan without its personal credit, so
// it is ₺100.000 short.
func ShortVehiclePlan(t testing.TB) *planner.AssetPlan {
	t.Helper()
	plan := ExactVehiclePlan(t)
	if err := plan.RemovePersonal(plan.Personal[0].ID); err != nil {
		t.Fatalf("RemovePersonal: %v", err)
	}
	return plan
}

// FindWarning returns the first warning containing substr, or "".
func FindWarning(warnings []string, substr string) string {
	for _, warning := range warnings {
		if strings.Contains(warning, substr) {
			return warning
		}
	}
	return ""
}
