package testutil

import (
	"testing"

	"github.com/iwvelando/payment-planner/internal/planner"
)

func TestFixtures(t *testing.T) {
	exact := ExactVehiclePlan(t)
	if !exact.CanPersist() {
		t.Errorf("ExactVehiclePlan should be persistable")
	}

	short := ShortVehiclePlan(t)
	rec := short.Reconciliation()
	if rec.State != planner.StateShort {
		t.Errorf("ShortVehiclePlan state = %s, want short", rec.State)
	}
	if rec.Remaining.String() != "100000" {
		t.Errorf("ShortVehiclePlan remaining = %s, want 100000", rec.Remaining)
	}
	if len(exact.Personal) != 1 {
		t.Errorf("ShortVehiclePlan must not modify other fixtures")
	}
}

func TestFindWarning(t *testing.T) {
	warnings := []string{"plan is short by ₺1.000,00", "income falls short by ₺500,00 per month in months 1-12"}

	tests := []struct {
		name   string
		substr string
		want   string
	}{
		{name: "first match", substr: "short by", want: warnings[0]},
		{name: "income warning", substr: "income", want: warnings[1]},
		{name: "missing", substr: "over", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindWarning(warnings, tt.substr); got != tt.want {
				t.Errorf("FindWarning(%q) = %q, want %q", tt.substr, got, tt.want)
			}
		})
	}
}
