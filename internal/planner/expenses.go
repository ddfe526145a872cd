package planner

import (
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

// DefaultProfiles returns the two observed default profiles, keyed by mode.
// The create and edit flows historically used different flat fees and
// vehicle terms; both are kept so the choice stays a configuration matter.
func DefaultProfiles() map[Mode]Profile {
	rate := decimal.RequireFromString(constants.DefaultTitleTransferRate)
	return map[Mode]Profile{
		ModeCreate: {
			Expenses: ExpenseDefaults{
				TitleTransferRate:      rate,
				LoanAllocationFee:      decimal.RequireFromString(constants.CreateLoanAllocationFee),
				AppraisalFee:           decimal.RequireFromString(constants.CreateAppraisalFee),
				LienRegistrationFee:    decimal.RequireFromString(constants.CreateLienRegistrationFee),
				HazardInsurancePremium: decimal.RequireFromString(constants.CreateHazardInsurancePremium),
				RevolvingFundFee:       decimal.RequireFromString(constants.CreateRevolvingFundFee),
			},
			VehicleTermMonths: constants.CreateVehicleTermMonths,
		},
		ModeEdit: {
			Expenses: ExpenseDefaults{
				TitleTransferRate:      rate,
				LoanAllocationFee:      decimal.RequireFromString(constants.EditLoanAllocationFee),
				AppraisalFee:           decimal.RequireFromString(constants.EditAppraisalFee),
				LienRegistrationFee:    decimal.RequireFromString(constants.EditLienRegistrationFee),
				HazardInsurancePremium: decimal.RequireFromString(constants.EditHazardInsurancePremium),
				RevolvingFundFee:       decimal.RequireFromString(constants.EditRevolvingFundFee),
			},
			VehicleTermMonths: constants.EditVehicleTermMonths,
		},
	}
}

// CalculateAuxiliaryExpenses derives the closing costs for an asset. Only
// housing carries auxiliary expenses; any other category yields a zero value
// and custom items are ignored. The custom slice is copied.
func CalculateAuxiliaryExpenses(category Category, price decimal.Decimal, defaults ExpenseDefaults, custom []CustomExpense) AuxiliaryExpenses {
	if category != CategoryHousing {
		return AuxiliaryExpenses{Custom: []CustomExpense{}}
	}

	expenses := AuxiliaryExpenses{
		TitleTransferFee:       price.Mul(defaults.TitleTransferRate),
		LoanAllocationFee:      defaults.LoanAllocationFee,
		AppraisalFee:           defaults.AppraisalFee,
		LienRegistrationFee:    defaults.LienRegistrationFee,
		HazardInsurancePremium: defaults.HazardInsurancePremium,
		RevolvingFundFee:       defaults.RevolvingFundFee,
		Custom:                 make([]CustomExpense, len(custom)),
	}
	copy(expenses.Custom, custom)

	total := expenses.NamedTotal()
	for _, item := range expenses.Custom {
		total = total.Add(item.Amount)
	}
	expenses.Total = total

	return expenses
}

// NamedTotal returns the sum of the six named fees, excluding custom items.
func (e AuxiliaryExpenses) NamedTotal() decimal.Decimal {
	return e.TitleTransferFee.
		Add(e.LoanAllocationFee).
		Add(e.AppraisalFee).
		Add(e.LienRegistrationFee).
		Add(e.HazardInsurancePremium).
		Add(e.RevolvingFundFee)
}

// IsZero reports whether no auxiliary expense applies.
func (e AuxiliaryExpenses) IsZero() bool {
	return e.Total.IsZero() && len(e.Custom) == 0
}
