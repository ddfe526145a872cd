package planner

import (
	"testing"

	"go.uber.org/zap"
)

func TestCheckAffordability(t *testing.T) {
	timeline := BuildTimeline(nil, []SelectedCredit{
		credit(CategoryPersonal, 12, "1000"),
		credit(CategoryPersonal, 24, "500"),
	})

	results := CheckAffordability(dec("1200"), timeline)

	if len(results) != 2 {
		t.Fatalf("got %d results, expected 2", len(results))
	}
	if results[0].Verdict != VerdictInsufficient || !results[0].Balance.Equal(dec("-300")) {
		t.Errorf("first period = %+v, expected a 300 deficit", results[0])
	}
	if results[1].Verdict != VerdictSufficient || !results[1].Balance.Equal(dec("700")) {
		t.Errorf("second period = %+v, expected a 700 surplus", results[1])
	}
	if Affordable(results) {
		t.Error("Affordable should be false with a deficit period")
	}
}

func TestCheckAffordabilityBoundary(t *testing.T) {
	timeline := BuildTimeline(nil, []SelectedCredit{credit(CategoryPersonal, 12, "1000")})
	results := CheckAffordability(dec("1000"), timeline)
	if results[0].Verdict != VerdictSufficient {
		t.Errorf("zero balance should be sufficient, got %s", results[0].Verdict)
	}
}

func TestCheckAffordabilityWithoutCredits(t *testing.T) {
	results := CheckAffordability(dec("0"), nil)

	if len(results) != 1 {
		t.Fatalf("got %d results, expected 1", len(results))
	}
	if !results[0].Informational || results[0].Verdict != VerdictSufficient {
		t.Errorf("expected an informational sufficient result, got %+v", results[0])
	}
}

func TestEngineProfiles(t *testing.T) {
	custom := DefaultProfiles()[ModeEdit]
	custom.VehicleTermMonths = 60
	engine := NewEngine(zap.NewNop(), map[Mode]Profile{ModeEdit: custom}, nil)

	profile, err := engine.Profile(ModeEdit)
	if err != nil || profile.VehicleTermMonths != 60 {
		t.Errorf("edit profile = %+v, %v", profile, err)
	}
	profile, err = engine.Profile(ModeCreate)
	if err != nil || profile.VehicleTermMonths != 36 {
		t.Errorf("create profile = %+v, %v", profile, err)
	}
	if _, err := engine.Profile(Mode("draft")); err == nil {
		t.Error("expected an error for an unknown mode")
	}

	plan, err := engine.NewPlan(ModeEdit, CategoryHousing, dec("1000000"))
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	if !plan.AuxiliaryExpenses().LoanAllocationFee.Equal(dec("4000")) {
		t.Errorf("edit plan should use edit fees, got %s", plan.AuxiliaryExpenses().LoanAllocationFee)
	}

	report, err := engine.Evaluate(plan)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Reconciliation.State != StateShort {
		t.Errorf("empty plan should be short, got %s", report.Reconciliation.State)
	}
}

func TestEngineRankLogsMalformed(t *testing.T) {
	engine := NewEngine(nil, nil, nil)
	offers, errs := engine.Rank([]OfferRecord{
		{LenderCode: "teb", RateText: "1,20", InstallmentText: "100", TotalText: "1200"},
		{LenderCode: "ing", RateText: "n/a"},
	}, dec("1000"), 12)

	if len(offers) != 1 || len(errs) != 1 {
		t.Errorf("got %d offers and %d errors, expected 1 and 1", len(offers), len(errs))
	}
	if offers[0].LenderName != "TEB" {
		t.Errorf("LenderName = %q, expected TEB", offers[0].LenderName)
	}
}
