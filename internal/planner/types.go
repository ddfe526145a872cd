// Package planner implements the payment plan reconciliation engine: it
// derives auxiliary acquisition costs, gates credit requests against
// regulatory limits, ranks credit offers, reconciles financing against the
// target price and builds the repayment timeline with affordability checks.
package planner

import (
	"fmt"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/shopspring/decimal"
)

// Category tags an asset plan or a selected credit.
type Category string

const (
	CategoryHousing  Category = "housing"
	CategoryVehicle  Category = "vehicle"
	CategoryPersonal Category = "personal"
)

// IsAsset reports whether c is a valid plan category (housing or vehicle).
func (c Category) IsAsset() bool {
	return c == CategoryHousing || c == CategoryVehicle
}

// Valid reports whether c is a known credit category.
func (c Category) Valid() bool {
	return c.IsAsset() || c == CategoryPersonal
}

// ParseCategory converts user input into a Category.
func ParseCategory(value string) (Category, error) {
	c := Category(value)
	if !c.Valid() {
		return "", &ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", value)}
	}
	return c, nil
}

// Mode selects which default profile a plan is built with.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// ParseMode converts user input into a Mode. An empty value means create.
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case "", ModeCreate:
		return ModeCreate, nil
	case ModeEdit:
		return ModeEdit, nil
	}
	return "", &ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown mode %q", value)}
}

// DownPayment is an amount paid up front from own funds.
type DownPayment struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// MonthlyIncomeItem is a declared monthly income.
type MonthlyIncomeItem struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CustomExpense is a user-added auxiliary cost line.
type CustomExpense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// CreditOffer is a canonical, parsed credit quote.
type CreditOffer struct {
	LenderCode         string          `json:"lenderCode"`
	LenderName         string          `json:"lenderName"`
	Principal          decimal.Decimal `json:"principal"`
	Rate               decimal.Decimal `json:"rate"`
	MonthlyInstallment decimal.Decimal `json:"monthlyInstallment"`
	TotalRepayment     decimal.Decimal `json:"totalRepayment"`
	TermMonths         int             `json:"termMonths"`
	Fallback           bool            `json:"fallback,omitempty"`
}

// ValidateTerm bounds a credit term to between one and MaxTermMonths months.
func ValidateTerm(termMonths int) error {
	if termMonths <= 0 {
		return &ValidationError{Field: "termMonths", Reason: "must be at least one month"}
	}
	if termMonths > constants.MaxTermMonths {
		return &ValidationError{Field: "termMonths", Reason: fmt.Sprintf("must be at most %d months", constants.MaxTermMonths)}
	}
	return nil
}

func (o CreditOffer) validate() error {
	if !o.Principal.IsPositive() {
		return &ValidationError{Field: "principal", Reason: "must be greater than zero"}
	}
	if err := ValidateTerm(o.TermMonths); err != nil {
		return err
	}
	if o.MonthlyInstallment.IsNegative() {
		return &ValidationError{Field: "monthlyInstallment", Reason: "cannot be negative"}
	}
	return nil
}

// SelectedCredit is an offer the user committed to, tagged with its category.
type SelectedCredit struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	CreditOffer
}

// Description is the human-readable label used in repayment periods.
func (c SelectedCredit) Description() string {
	name := c.LenderName
	if name == "" {
		name = c.LenderCode
	}
	return fmt.Sprintf("%s %s credit (%d mo)", name, c.Category, c.TermMonths)
}

// ExpenseDefaults are the configurable constants behind the auxiliary expense
// calculation. TitleTransferRate is a fraction of the price (0.04 = 4%).
type ExpenseDefaults struct {
	TitleTransferRate      decimal.Decimal `json:"titleTransferRate"`
	LoanAllocationFee      decimal.Decimal `json:"loanAllocationFee"`
	AppraisalFee           decimal.Decimal `json:"appraisalFee"`
	LienRegistrationFee    decimal.Decimal `json:"lienRegistrationFee"`
	HazardInsurancePremium decimal.Decimal `json:"hazardInsurancePremium"`
	RevolvingFundFee       decimal.Decimal `json:"revolvingFundFee"`
}

// Profile bundles the defaults a flow starts from.
type Profile struct {
	Expenses          ExpenseDefaults `json:"expenses"`
	VehicleTermMonths int             `json:"vehicleTermMonths"`
}

// AuxiliaryExpenses are the closing costs added on top of a housing price.
type AuxiliaryExpenses struct {
	TitleTransferFee       decimal.Decimal `json:"titleTransferFee"`
	LoanAllocationFee      decimal.Decimal `json:"loanAllocationFee"`
	AppraisalFee           decimal.Decimal `json:"appraisalFee"`
	LienRegistrationFee    decimal.Decimal `json:"lienRegistrationFee"`
	HazardInsurancePremium decimal.Decimal `json:"hazardInsurancePremium"`
	RevolvingFundFee       decimal.Decimal `json:"revolvingFundFee"`
	Custom                 []CustomExpense `json:"custom"`
	Total                  decimal.Decimal `json:"total"`
}
