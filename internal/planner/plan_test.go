package planner

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func offer(principal string, term int, installment string) CreditOffer {
	return CreditOffer{
		LenderCode:         "garanti-bbva",
		LenderName:         "Garanti BBVA",
		Principal:          dec(principal),
		Rate:               dec("2.79"),
		MonthlyInstallment: dec(installment),
		TotalRepayment:     dec(installment).Mul(decimal.NewFromInt(int64(term))),
		TermMonths:         term,
	}
}

// shortHousingPlan returns a named housing plan that is 1,000 short of its
// target of 1,000,000 price plus 53,000 create-profile expenses.
func shortHousingPlan(t *testing.T) *AssetPlan {
	t.Helper()

	plan, err := NewAssetPlan(ModeCreate, CategoryHousing, dec("1000000"), DefaultProfiles()[ModeCreate])
	if err != nil {
		t.Fatalf("NewAssetPlan: %v", err)
	}
	if _, err := plan.AddDownPayment(dec("252000"), "savings"); err != nil {
		t.Fatalf("AddDownPayment: %v", err)
	}
	if _, err := plan.SelectPrimary(offer("700000", 120, "20000")); err != nil {
		t.Fatalf("SelectPrimary: %v", err)
	}
	if _, err := plan.AddPersonal(offer("100000", 12, "9500")); err != nil {
		t.Fatalf("AddPersonal: %v", err)
	}
	if _, err := plan.AddIncome(dec("45000"), "salary"); err != nil {
		t.Fatalf("AddIncome: %v", err)
	}
	plan.SetName("Kadıköy flat")
	return plan
}

func TestAssetPlanTarget(t *testing.T) {
	plan := shortHousingPlan(t)

	// 40000 title transfer + 13000 create-profile flat fees
	if want := dec("1053000"); !plan.Target().Equal(want) {
		t.Errorf("Target = %s, expected %s", plan.Target(), want)
	}
	if plan.IsExact() {
		t.Fatalf("plan should be short by 1000, remaining %s", plan.Reconciliation().Remaining)
	}
	if _, err := plan.AddDownPayment(dec("1000"), "gift"); err != nil {
		t.Fatalf("AddDownPayment: %v", err)
	}
	if !plan.IsExact() {
		t.Errorf("plan should be exact, remaining %s", plan.Reconciliation().Remaining)
	}
	if !plan.CanPersist() {
		t.Error("exact named plan should be persistable")
	}
}

func TestAssetPlanCanPersistNeedsName(t *testing.T) {
	plan := shortHousingPlan(t)
	_, _ = plan.AddDownPayment(dec("1000"), "gift")
	plan.SetName("   ")

	if !plan.IsExact() {
		t.Fatal("plan should be exact")
	}
	if plan.CanPersist() {
		t.Error("unnamed plan must not be persistable")
	}
	var validationErr *ValidationError
	if err := plan.PersistError(); !errors.As(err, &validationErr) || validationErr.Field != "name" {
		t.Errorf("PersistError = %v, expected name validation error", err)
	}
}

func TestAssetPlanRejectsInvalidInput(t *testing.T) {
	if _, err := NewAssetPlan(ModeCreate, CategoryPersonal, dec("1"), Profile{}); err == nil {
		t.Error("personal is not an asset category")
	}
	if _, err := NewAssetPlan(ModeCreate, CategoryHousing, dec("-1"), Profile{}); err == nil {
		t.Error("negative price must be rejected")
	}

	plan, _ := NewAssetPlan(ModeCreate, CategoryVehicle, dec("800000"), DefaultProfiles()[ModeCreate])
	var validationErr *ValidationError
	if _, err := plan.AddDownPayment(decimal.Zero, "nothing"); !errors.As(err, &validationErr) {
		t.Errorf("zero down payment: expected ValidationError, got %v", err)
	}
	if _, err := plan.AddIncome(dec("-5"), "debt"); !errors.As(err, &validationErr) {
		t.Errorf("negative income: expected ValidationError, got %v", err)
	}
	if _, err := plan.AddCustomExpense(dec("100"), "tyres"); !errors.As(err, &validationErr) {
		t.Errorf("custom expense on vehicle: expected ValidationError, got %v", err)
	}

	var limitErr *LimitExceededError
	if _, err := plan.SelectPrimary(offer("400000.01", 36, "15000")); !errors.As(err, &limitErr) {
		t.Errorf("vehicle above LTV: expected LimitExceededError, got %v", err)
	}
	if _, err := plan.AddPersonal(offer("300000", 24, "15000")); !errors.As(err, &limitErr) {
		t.Errorf("personal above tier: expected LimitExceededError, got %v", err)
	}
	if plan.Primary != nil || len(plan.Personal) != 0 {
		t.Error("rejected offers must not be selected")
	}
}

func TestAssetPlanVehicleHasNoExpenses(t *testing.T) {
	plan, _ := NewAssetPlan(ModeEdit, CategoryVehicle, dec("800000"), DefaultProfiles()[ModeEdit])
	if !plan.Target().Equal(dec("800000")) {
		t.Errorf("vehicle Target = %s, expected the price", plan.Target())
	}
	if _, err := plan.SelectPrimary(offer("400000", 48, "14000")); err != nil {
		t.Fatalf("SelectPrimary: %v", err)
	}
	if plan.Primary.Category != CategoryVehicle {
		t.Errorf("primary category = %s, expected vehicle", plan.Primary.Category)
	}
}

func TestAssetPlanRejectsOverlongTerm(t *testing.T) {
	plan := shortHousingPlan(t)

	for _, term := range []int{481, 120_000_000, math.MaxInt} {
		_, err := plan.SelectPrimary(offer("700000", term, "20000"))
		var validation *ValidationError
		if !errors.As(err, &validation) || validation.Field != "termMonths" {
			t.Errorf("term %d: expected termMonths ValidationError, got %v", term, err)
		}
	}
	if plan.Primary.TermMonths != 120 {
		t.Errorf("rejected offers must not replace the primary credit, term is %d", plan.Primary.TermMonths)
	}
	if _, err := plan.SelectPrimary(offer("700000", 480, "20000")); err != nil {
		t.Errorf("480 month term should be accepted: %v", err)
	}
	if _, err := plan.Report(); err != nil {
		t.Errorf("Report: %v", err)
	}

	_, _ = plan.AddDownPayment(dec("1000"), "gift")
	record, err := plan.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	record.PrimaryCredit.TermMonths = math.MaxInt
	if _, err := record.ToPlan(DefaultProfiles()[ModeCreate]); err == nil {
		t.Error("ToPlan should reject a stored credit with an overlong term")
	}
}

func TestAssetPlanRemoveLineItems(t *testing.T) {
	plan := shortHousingPlan(t)
	down, _ := plan.AddDownPayment(dec("2000"), "gift")
	custom, _ := plan.AddCustomExpense(dec("1000"), "notary")

	if !plan.IsExact() {
		t.Fatalf("custom expense and down payment should cancel out, remaining %s", plan.Reconciliation().Remaining)
	}
	if err := plan.RemoveCustomExpense(custom.ID); err != nil {
		t.Fatalf("RemoveCustomExpense: %v", err)
	}
	if err := plan.RemoveDownPayment(down.ID); err != nil {
		t.Fatalf("RemoveDownPayment: %v", err)
	}
	if err := plan.RemovePersonal(plan.Personal[0].ID); err != nil {
		t.Fatalf("RemovePersonal: %v", err)
	}
	if err := plan.RemoveIncome("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveIncome(missing) = %v, expected ErrNotFound", err)
	}
	if len(plan.Personal) != 0 || len(plan.DownPayments) != 1 {
		t.Errorf("unexpected line items after removal: %d personal, %d down payments", len(plan.Personal), len(plan.DownPayments))
	}
}

func TestAssetPlanClone(t *testing.T) {
	plan := shortHousingPlan(t)
	clone := plan.Clone()

	clone.Primary.Principal = dec("1")
	clone.DownPayments[0].Amount = dec("1")

	if plan.Primary.Principal.Equal(dec("1")) || plan.DownPayments[0].Amount.Equal(dec("1")) {
		t.Error("Clone shares state with the original plan")
	}
}

func TestAssetPlanReport(t *testing.T) {
	plan := shortHousingPlan(t)
	_, _ = plan.AddDownPayment(dec("1000"), "gift")
	if err := plan.SetStartMonth("2026-11"); err != nil {
		t.Fatalf("SetStartMonth: %v", err)
	}

	report, err := plan.Report()
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !report.Persistable {
		t.Error("report should be persistable")
	}
	if !report.TotalMonthlyPayment.Equal(dec("29500")) {
		t.Errorf("TotalMonthlyPayment = %s, expected 29500", report.TotalMonthlyPayment)
	}
	if len(report.Timeline) != 2 || report.Timeline[1].EndLabel != "2036-10" {
		t.Errorf("unexpected timeline %+v", report.Timeline)
	}
	if len(report.Yearly) != 10 {
		t.Errorf("got %d yearly rows, expected 10", len(report.Yearly))
	}
	if len(report.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", report.Warnings)
	}
	if !report.Affordable {
		t.Error("report should be affordable")
	}

	plan.Incomes = nil
	_, _ = plan.AddIncome(dec("25000"), "part time")
	report, _ = plan.Report()
	if !report.Persistable {
		t.Error("an income shortfall must not block persistence")
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected one affordability warning, got %v", report.Warnings)
	}
	if report.Affordable {
		t.Error("report should not be affordable after the income cut")
	}
}

func TestPlanRecordRoundTrip(t *testing.T) {
	plan := shortHousingPlan(t)
	_, _ = plan.AddDownPayment(dec("0.33"), "coins")
	_, _ = plan.AddCustomExpense(dec("0.33"), "stamp")
	_, _ = plan.AddDownPayment(dec("1000"), "gift")
	plan.SharedWith = "partner@example.com"

	record, err := plan.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Reload with a different profile: the stored fees must win.
	var decoded PlanRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	reloaded, err := decoded.ToPlan(DefaultProfiles()[ModeEdit])
	if err != nil {
		t.Fatalf("ToPlan: %v", err)
	}

	if !reloaded.IsExact() {
		t.Errorf("reloaded plan is %s, remaining %s", reloaded.Reconciliation().State, reloaded.Reconciliation().Remaining)
	}
	if !reloaded.Target().Equal(plan.Target()) {
		t.Errorf("Target = %s, expected %s", reloaded.Target(), plan.Target())
	}
	if reloaded.SharedWith != "partner@example.com" || len(reloaded.CustomExpenses) != 1 {
		t.Errorf("reloaded plan lost data: %+v", reloaded)
	}
	if err := decoded.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestPlanRecordRejectsMismatch(t *testing.T) {
	plan := shortHousingPlan(t)

	_, err := plan.ToRecord()
	var mismatch *ReconciliationMismatchError
	if !errors.As(err, &mismatch) || mismatch.State != StateShort {
		t.Fatalf("ToRecord = %v, expected short mismatch", err)
	}
}

func TestPlanRecordVehicleHasNoExpenses(t *testing.T) {
	plan, _ := NewAssetPlan(ModeCreate, CategoryVehicle, dec("800000"), DefaultProfiles()[ModeCreate])
	_, _ = plan.AddDownPayment(dec("400000"), "trade-in")
	_, _ = plan.SelectPrimary(offer("400000", 36, "15000"))
	plan.SetName("car")

	record, err := plan.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord: %v", err)
	}
	if record.AuxiliaryExpenses != nil {
		t.Error("vehicle records carry no auxiliary expenses")
	}
	if !record.TotalMonthlyPayment.Equal(dec("15000")) {
		t.Errorf("TotalMonthlyPayment = %s, expected 15000", record.TotalMonthlyPayment)
	}
}
