package adapters

import (
	"testing"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/shopspring/decimal"
)

func TestProfilesFromConfig(t *testing.T) {
	conf := config.PlannerConfig{
		Profiles: map[string]config.ProfileConfig{
			"edit": {
				LoanAllocationFee: "4.500",
				TitleTransferRate: "0,05",
				VehicleTermMonths: 60,
			},
		},
	}

	profiles, err := ProfilesFromConfig(conf)
	if err != nil {
		t.Fatalf("ProfilesFromConfig() error = %v", err)
	}

	edit := profiles[planner.ModeEdit]
	if !edit.Expenses.LoanAllocationFee.Equal(decimal.NewFromInt(4500)) {
		t.Errorf("LoanAllocationFee = %s, expected 4500", edit.Expenses.LoanAllocationFee)
	}
	if !edit.Expenses.TitleTransferRate.Equal(decimal.RequireFromString("0.05")) {
		t.Errorf("TitleTransferRate = %s, expected 0.05", edit.Expenses.TitleTransferRate)
	}
	if edit.VehicleTermMonths != 60 {
		t.Errorf("VehicleTermMonths = %d, expected 60", edit.VehicleTermMonths)
	}
	// Untouched fields keep the built-in edit defaults.
	if !edit.Expenses.AppraisalFee.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("AppraisalFee = %s, expected 3000", edit.Expenses.AppraisalFee)
	}

	create := profiles[planner.ModeCreate]
	if !create.Expenses.LoanAllocationFee.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("create profile should be untouched, got %s", create.Expenses.LoanAllocationFee)
	}
}

func TestProfilesFromConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		conf config.PlannerConfig
	}{
		{
			name: "Unknown mode",
			conf: config.PlannerConfig{Profiles: map[string]config.ProfileConfig{"draft": {}}},
		},
		{
			name: "Malformed amount",
			conf: config.PlannerConfig{Profiles: map[string]config.ProfileConfig{"create": {AppraisalFee: "lots"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ProfilesFromConfig(tt.conf); err == nil {
				t.Errorf("ProfilesFromConfig() expected error but got none")
			}
		})
	}
}

func TestLendersFromConfig(t *testing.T) {
	lenders := LendersFromConfig(config.PlannerConfig{Lenders: map[string]string{"yerel-banka": "Yerel Bankası"}})

	if got := lenders.DisplayName("yerel-banka"); got != "Yerel Bankası" {
		t.Errorf("DisplayName(yerel-banka) = %q", got)
	}
	if got := lenders.DisplayName("garanti-bbva"); got != "Garanti BBVA" {
		t.Errorf("built-in lenders should survive the merge, got %q", got)
	}
}

func TestFallbackOffersFromConfig(t *testing.T) {
	conf := config.PlannerConfig{
		FallbackOffers: map[string][]config.FallbackOfferConfig{
			"personal": {
				{LenderCode: "akbank", Rate: "3,99"},
				{LenderCode: "teb", Rate: "4,10", Installment: "1.234,56", Total: "14.814,72"},
			},
		},
	}

	fallback, err := FallbackOffersFromConfig(conf)
	if err != nil {
		t.Fatalf("FallbackOffersFromConfig() error = %v", err)
	}
	records := fallback[planner.CategoryPersonal]
	if len(records) != 2 {
		t.Fatalf("got %d records, expected 2", len(records))
	}
	if records[1].InstallmentText != "1.234,56" || records[0].RateText != "3,99" {
		t.Errorf("unexpected records %+v", records)
	}

	if _, err := FallbackOffersFromConfig(config.PlannerConfig{
		FallbackOffers: map[string][]config.FallbackOfferConfig{"boat": nil},
	}); err == nil {
		t.Error("expected an error for an unknown category")
	}
}
