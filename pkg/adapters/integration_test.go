package adapters

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/internal/quotes"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// exampleStack wires the engine and quote service from the shipped example
// configuration.
func exampleStack(t testing.TB) (*planner.Engine, *quotes.Service) {
	t.Helper()

	conf, err := config.LoadConfiguration("../../config.yaml.example")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("example configuration is invalid: %v", err)
	}

	profiles, err := ProfilesFromConfig(conf.Planner)
	if err != nil {
		t.Fatalf("ProfilesFromConfig failed: %v", err)
	}
	fallback, err := FallbackOffersFromConfig(conf.Planner)
	if err != nil {
		t.Fatalf("FallbackOffersFromConfig failed: %v", err)
	}

	logger := zap.NewNop()
	engine := planner.NewEngine(logger, profiles, LendersFromConfig(conf.Planner))
	return engine, quotes.NewService(logger, engine, nil, fallback, nil)
}

// buildHousingPlan quotes a housing credit from the fallback list and closes
// the gap to the target with a single down payment.
func buildHousingPlan(t testing.TB, engine *planner.Engine, svc *quotes.Service, mode planner.Mode) *planner.AssetPlan {
	t.Helper()

	principal := decimal.NewFromInt(800000)
	resp, err := svc.Quote(context.Background(), quotes.Request{
		Category:   planner.CategoryHousing,
		Principal:  principal,
		TermMonths: 120,
	})
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if !resp.Fallback || len(resp.Offers) == 0 {
		t.Fatalf("expected fallback offers, got %+v", resp)
	}

	plan, err := engine.NewPlan(mode, planner.CategoryHousing, decimal.NewFromInt(1500000))
	if err != nil {
		t.Fatalf("NewPlan failed: %v", err)
	}
	plan.SetName("Flat in Kadıköy")
	if err := plan.SetStartMonth("2027-03"); err != nil {
		t.Fatalf("SetStartMonth failed: %v", err)
	}
	if _, err := plan.SelectPrimary(resp.Offers[0]); err != nil {
		t.Fatalf("SelectPrimary failed: %v", err)
	}
	if _, err := plan.AddIncome(decimal.NewFromInt(90000), "Salary"); err != nil {
		t.Fatalf("AddIncome failed: %v", err)
	}
	down := plan.Target().Sub(plan.PrimaryPrincipal())
	if _, err := plan.AddDownPayment(down, "Savings"); err != nil {
		t.Fatalf("AddDownPayment failed: %v", err)
	}
	return plan
}

func TestExampleConfigurationEndToEnd(t *testing.T) {
	engine, svc := exampleStack(t)
	plan := buildHousingPlan(t, engine, svc, planner.ModeCreate)

	if !plan.IsExact() {
		t.Fatalf("plan should reconcile exactly, remaining %s", plan.Reconciliation().Remaining)
	}
	if err := plan.PersistError(); err != nil {
		t.Fatalf("plan should be persistable: %v", err)
	}
	if plan.Primary.LenderCode != "ziraat-bankasi" {
		t.Errorf("cheapest fallback lender = %s, want ziraat-bankasi", plan.Primary.LenderCode)
	}

	report, err := engine.Evaluate(plan)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !report.Persistable {
		t.Errorf("report should be persistable, warnings: %v", report.Warnings)
	}
	if len(report.Timeline) != 1 {
		t.Fatalf("expected a single repayment period, got %d", len(report.Timeline))
	}
	if report.Timeline[0].StartLabel != "2027-03" {
		t.Errorf("first period starts %q, want 2027-03", report.Timeline[0].StartLabel)
	}

	record, err := plan.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord failed: %v", err)
	}
	restored, err := engine.FromRecord(record)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if !restored.Target().Equal(plan.Target()) {
		t.Errorf("restored target %s, want %s", restored.Target(), plan.Target())
	}
	if !restored.IsExact() {
		t.Error("restored plan should still reconcile exactly")
	}

	t.Logf("Evaluated %s: target %s over %d months", report.Name, report.Target, report.Timeline.MaxMonth())
}

func TestDataConsistency(t *testing.T) {
	engine, svc := exampleStack(t)
	plan := buildHousingPlan(t, engine, svc, planner.ModeCreate)

	var first []byte
	for run := 0; run < 5; run++ {
		report, err := engine.Evaluate(plan)
		if err != nil {
			t.Fatalf("run %d: Evaluate failed: %v", run, err)
		}
		encoded, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("run %d: marshal failed: %v", run, err)
		}
		if first == nil {
			first = encoded
			continue
		}
		if string(encoded) != string(first) {
			t.Fatalf("run %d produced a different report:\n%s\nwant:\n%s", run, encoded, first)
		}
	}
}

func TestConfigurationVariations(t *testing.T) {
	engine, svc := exampleStack(t)

	create := buildHousingPlan(t, engine, svc, planner.ModeCreate)
	edit := buildHousingPlan(t, engine, svc, planner.ModeEdit)

	createFees := create.AuxiliaryExpenses().Total
	editFees := edit.AuxiliaryExpenses().Total
	if !createFees.GreaterThan(editFees) {
		t.Errorf("create profile fees %s should exceed edit profile fees %s", createFees, editFees)
	}
	if !create.IsExact() || !edit.IsExact() {
		t.Error("both plans should reconcile exactly against their own target")
	}

	record, err := edit.ToRecord()
	if err != nil {
		t.Fatalf("ToRecord failed: %v", err)
	}
	restored, err := engine.FromRecord(record)
	if err != nil {
		t.Fatalf("FromRecord failed: %v", err)
	}
	if !restored.AuxiliaryExpenses().Total.Equal(editFees) {
		t.Errorf("restored fees %s, want the recorded %s", restored.AuxiliaryExpenses().Total, editFees)
	}
}

func TestPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	engine, svc := exampleStack(t)

	start := time.Now()
	plan := buildHousingPlan(t, engine, svc, planner.ModeCreate)
	buildTime := time.Since(start)

	start = time.Now()
	const iterations = 200
	for i := 0; i < iterations; i++ {
		if _, err := engine.Evaluate(plan); err != nil {
			t.Fatalf("iteration %d: Evaluate failed: %v", i, err)
		}
	}
	evaluateTime := time.Since(start)

	records := make([]planner.OfferRecord, 0, 500)
	for i := 0; i < 500; i++ {
		records = append(records, planner.OfferRecord{
			LenderCode: "garanti-bbva",
			RateText:   strings.Replace(decimal.NewFromFloat(2.5).Add(decimal.New(int64(i), -3)).StringFixed(3), ".", ",", 1),
		})
	}
	start = time.Now()
	offers, errs := engine.Rank(records, decimal.NewFromInt(800000), 120)
	rankTime := time.Since(start)
	if len(errs) > 0 || len(offers) != len(records) {
		t.Fatalf("expected %d ranked offers, got %d with %d errors", len(records), len(offers), len(errs))
	}

	t.Logf("Performance results:")
	t.Logf("  Plan build: %v", buildTime)
	t.Logf("  %d evaluations: %v", iterations, evaluateTime)
	t.Logf("  Rank %d offers: %v", len(records), rankTime)

	total := buildTime + evaluateTime + rankTime
	if total > 10*time.Second {
		t.Errorf("planner took too long: %v", total)
	}
}

func BenchmarkEvaluate(b *testing.B) {
	engine, svc := exampleStack(b)
	plan := buildHousingPlan(b, engine, svc, planner.ModeCreate)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Evaluate(plan); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRank(b *testing.B) {
	engine, _ := exampleStack(b)
	records := []planner.OfferRecord{
		{LenderCode: "ziraat-bankasi", RateText: "2,79"},
		{LenderCode: "vakifbank", RateText: "2,89"},
		{LenderCode: "garanti-bbva", RateText: "2,95"},
	}
	principal := decimal.NewFromInt(800000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.Rank(records, principal, 120)
	}
}
