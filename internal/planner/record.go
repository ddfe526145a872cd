package planner

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PlanRecord is the persisted shape of an exactly reconciled plan. Decimals
// serialise as strings so a round trip through JSON is lossless.
type PlanRecord struct {
	ID                  string              `json:"id"`
	OwnerID             string              `json:"ownerId"`
	Name                string              `json:"name"`
	Mode                Mode                `json:"mode"`
	Category            Category            `json:"category"`
	Price               decimal.Decimal     `json:"price"`
	StartMonth          string              `json:"startMonth,omitempty"`
	DownPayments        []DownPayment       `json:"downPayments"`
	PrimaryCredit       *SelectedCredit     `json:"primaryCredit"`
	PersonalCredits     []SelectedCredit    `json:"personalCredits"`
	MonthlyIncomes      []MonthlyIncomeItem `json:"monthlyIncomes"`
	AuxiliaryExpenses   *AuxiliaryExpenses  `json:"auxiliaryExpenses"`
	ExpenseDefaults     *ExpenseDefaults    `json:"expenseDefaults,omitempty"`
	TotalMonthlyPayment decimal.Decimal     `json:"totalMonthlyPayment"`
	SharedWith          *string             `json:"sharedWith"`
	CreatedAt           time.Time           `json:"createdAt"`
	UpdatedAt           time.Time           `json:"updatedAt"`
	Version             int                 `json:"version"`
}

// ToRecord snapshots a persistable plan. Plans that are not exactly
// reconciled or have no name are rejected with the reason.
func (p *AssetPlan) ToRecord() (PlanRecord, error) {
	if err := p.PersistError(); err != nil {
		return PlanRecord{}, err
	}

	snapshot := p.Clone()
	record := PlanRecord{
		ID:              snapshot.ID,
		OwnerID:         snapshot.OwnerID,
		Name:            snapshot.Name,
		Mode:            snapshot.Mode,
		Category:        snapshot.Category,
		Price:           snapshot.Price,
		StartMonth:      snapshot.StartMonth,
		DownPayments:    snapshot.DownPayments,
		PrimaryCredit:   snapshot.Primary,
		PersonalCredits: snapshot.Personal,
		MonthlyIncomes:  snapshot.Incomes,
		CreatedAt:       snapshot.CreatedAt,
		UpdatedAt:       snapshot.UpdatedAt,
		Version:         snapshot.Version,
	}

	if snapshot.Category == CategoryHousing {
		expenses := snapshot.AuxiliaryExpenses()
		defaults := snapshot.Expenses
		record.AuxiliaryExpenses = &expenses
		record.ExpenseDefaults = &defaults
	}

	record.TotalMonthlyPayment = decimal.Zero
	if timeline := BuildTimeline(snapshot.Primary, snapshot.Personal); len(timeline) > 0 {
		record.TotalMonthlyPayment = timeline[0].MonthlyObligation
	}
	if snapshot.SharedWith != "" {
		shared := snapshot.SharedWith
		record.SharedWith = &shared
	}

	return record, nil
}

// ToPlan rebuilds an editable plan from a record. Fees stored with the record
// win over the profile so that a reloaded plan reconciles exactly as saved.
func (r PlanRecord) ToPlan(profile Profile) (*AssetPlan, error) {
	if !r.Category.IsAsset() {
		return nil, &ValidationError{Field: "category", Reason: "is not an asset category"}
	}
	if err := positiveAmount("price", r.Price); err != nil {
		return nil, err
	}

	mode := r.Mode
	if mode == "" {
		mode = ModeCreate
	}

	plan := &AssetPlan{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		Mode:           mode,
		Category:       r.Category,
		Price:          r.Price,
		StartMonth:     r.StartMonth,
		DownPayments:   append([]DownPayment{}, r.DownPayments...),
		Personal:       append([]SelectedCredit{}, r.PersonalCredits...),
		Incomes:        append([]MonthlyIncomeItem{}, r.MonthlyIncomes...),
		CustomExpenses: []CustomExpense{},
		Expenses:       profile.Expenses,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		Version:        r.Version,
	}
	if r.PrimaryCredit != nil {
		if err := r.PrimaryCredit.validate(); err != nil {
			return nil, fmt.Errorf("primaryCredit: %w", err)
		}
		primary := *r.PrimaryCredit
		plan.Primary = &primary
	}
	for i, credit := range plan.Personal {
		if err := credit.validate(); err != nil {
			return nil, fmt.Errorf("personalCredits[%d]: %w", i, err)
		}
	}
	if r.SharedWith != nil {
		plan.SharedWith = *r.SharedWith
	}

	switch {
	case r.ExpenseDefaults != nil:
		plan.Expenses = *r.ExpenseDefaults
	case r.AuxiliaryExpenses != nil:
		plan.Expenses = defaultsFromExpenses(*r.AuxiliaryExpenses, r.Price)
	}
	if r.AuxiliaryExpenses != nil {
		plan.CustomExpenses = append(plan.CustomExpenses, r.AuxiliaryExpenses.Custom...)
	}

	return plan, nil
}

// Validate checks that the record describes a persistable plan.
func (r PlanRecord) Validate() error {
	plan, err := r.ToPlan(Profile{})
	if err != nil {
		return err
	}
	return plan.PersistError()
}

// defaultsFromExpenses recovers the expense defaults of a record that only
// stored the derived expenses.
func defaultsFromExpenses(expenses AuxiliaryExpenses, price decimal.Decimal) ExpenseDefaults {
	rate := decimal.Zero
	if !price.IsZero() {
		rate = expenses.TitleTransferFee.Div(price)
	}
	return ExpenseDefaults{
		TitleTransferRate:      rate,
		LoanAllocationFee:      expenses.LoanAllocationFee,
		AppraisalFee:           expenses.AppraisalFee,
		LienRegistrationFee:    expenses.LienRegistrationFee,
		HazardInsurancePremium: expenses.HazardInsurancePremium,
		RevolvingFundFee:       expenses.RevolvingFundFee,
	}
}
