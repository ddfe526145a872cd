package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/payment-planner/pkg/datetime"
	"github.com/shopspring/decimal"
)

// AssetPlan is the root aggregate of a payment plan. It is owned by a single
// editing session and is not safe for concurrent mutation.
type AssetPlan struct {
	ID             string              `json:"id,omitempty"`
	OwnerID        string              `json:"ownerId,omitempty"`
	Name           string              `json:"name"`
	Mode           Mode                `json:"mode"`
	Category       Category            `json:"category"`
	Price          decimal.Decimal     `json:"price"`
	StartMonth     string              `json:"startMonth,omitempty"`
	SharedWith     string              `json:"sharedWith,omitempty"`
	DownPayments   []DownPayment       `json:"downPayments"`
	Primary        *SelectedCredit     `json:"primaryCredit"`
	Personal       []SelectedCredit    `json:"personalCredits"`
	Incomes        []MonthlyIncomeItem `json:"monthlyIncomes"`
	CustomExpenses []CustomExpense     `json:"customExpenses"`
	Expenses       ExpenseDefaults     `json:"expenseDefaults"`
	CreatedAt      time.Time           `json:"createdAt,omitempty"`
	UpdatedAt      time.Time           `json:"updatedAt,omitempty"`
	Version        int                 `json:"version,omitempty"`
}

// NewAssetPlan starts an empty plan for an asset using the given profile.
func NewAssetPlan(mode Mode, category Category, price decimal.Decimal, profile Profile) (*AssetPlan, error) {
	if !category.IsAsset() {
		return nil, &ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not an asset category", category)}
	}
	plan := &AssetPlan{
		Mode:           mode,
		Category:       category,
		Expenses:       profile.Expenses,
		DownPayments:   []DownPayment{},
		Personal:       []SelectedCredit{},
		Incomes:        []MonthlyIncomeItem{},
		CustomExpenses: []CustomExpense{},
	}
	if err := plan.SetPrice(price); err != nil {
		return nil, err
	}
	return plan, nil
}

func newID() string {
	return uuid.NewString()
}

func positiveAmount(field string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: field, Reason: "must be greater than zero"}
	}
	return nil
}

// SetPrice changes the asset price. A vehicle credit that no longer fits the
// loan-to-value band of the new price is kept; it is reported by Violations.
func (p *AssetPlan) SetPrice(price decimal.Decimal) error {
	if err := positiveAmount("price", price); err != nil {
		return err
	}
	p.Price = price
	return nil
}

// SetName sets the plan name.
func (p *AssetPlan) SetName(name string) {
	p.Name = strings.TrimSpace(name)
}

// SetStartMonth anchors the timeline to a calendar month. Empty clears it.
func (p *AssetPlan) SetStartMonth(month string) error {
	if month == "" {
		p.StartMonth = ""
		return nil
	}
	if err := datetime.ValidateMonth(month); err != nil {
		return &ValidationError{Field: "startMonth", Reason: err.Error()}
	}
	p.StartMonth = month
	return nil
}

// AddDownPayment appends a down payment and returns it with its identity.
func (p *AssetPlan) AddDownPayment(amount decimal.Decimal, description string) (DownPayment, error) {
	if err := positiveAmount("downPayment.amount", amount); err != nil {
		return DownPayment{}, err
	}
	item := DownPayment{ID: newID(), Amount: amount, Description: strings.TrimSpace(description)}
	p.DownPayments = append(p.DownPayments, item)
	return item, nil
}

// RemoveDownPayment removes a down payment by identity.
func (p *AssetPlan) RemoveDownPayment(id string) error {
	for i, item := range p.DownPayments {
		if item.ID == id {
			p.DownPayments = append(p.DownPayments[:i:i], p.DownPayments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("down payment %s: %w", id, ErrNotFound)
}

// AddIncome appends a declared monthly income.
func (p *AssetPlan) AddIncome(amount decimal.Decimal, description string) (MonthlyIncomeItem, error) {
	if err := positiveAmount("income.amount", amount); err != nil {
		return MonthlyIncomeItem{}, err
	}
	item := MonthlyIncomeItem{ID: newID(), Amount: amount, Description: strings.TrimSpace(description)}
	p.Incomes = append(p.Incomes, item)
	return item, nil
}

// RemoveIncome removes a monthly income by identity.
func (p *AssetPlan) RemoveIncome(id string) error {
	for i, item := range p.Incomes {
		if item.ID == id {
			p.Incomes = append(p.Incomes[:i:i], p.Incomes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("income %s: %w", id, ErrNotFound)
}

// AddCustomExpense appends a user-defined auxiliary cost. Only housing plans
// carry auxiliary expenses.
func (p *AssetPlan) AddCustomExpense(amount decimal.Decimal, description string) (CustomExpense, error) {
	if p.Category != CategoryHousing {
		return CustomExpense{}, &ValidationError{Field: "customExpense", Reason: "only housing plans carry auxiliary expenses"}
	}
	if err := positiveAmount("customExpense.amount", amount); err != nil {
		return CustomExpense{}, err
	}
	if strings.TrimSpace(description) == "" {
		return CustomExpense{}, &ValidationError{Field: "customExpense.description", Reason: "is required"}
	}
	item := CustomExpense{ID: newID(), Amount: amount, Description: strings.TrimSpace(description)}
	p.CustomExpenses = append(p.CustomExpenses, item)
	return item, nil
}

// RemoveCustomExpense removes a custom expense by identity.
func (p *AssetPlan) RemoveCustomExpense(id string) error {
	for i, item := range p.CustomExpenses {
		if item.ID == id {
			p.CustomExpenses = append(p.CustomExpenses[:i:i], p.CustomExpenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("custom expense %s: %w", id, ErrNotFound)
}

// SelectPrimary commits to a housing or vehicle offer for the plan's
// category, replacing any previous primary credit. Vehicle offers are gated
// by the loan-to-value band of the current price.
func (p *AssetPlan) SelectPrimary(offer CreditOffer) (SelectedCredit, error) {
	if err := offer.validate(); err != nil {
		return SelectedCredit{}, err
	}
	if p.Category == CategoryVehicle {
		if err := ValidateVehicleCredit(p.Price, offer.Principal); err != nil {
			return SelectedCredit{}, err
		}
	}
	selected := SelectedCredit{ID: newID(), Category: p.Category, CreditOffer: offer}
	p.Primary = &selected
	return selected, nil
}

// AddPersonal stacks a personal credit after checking the personal tiers.
func (p *AssetPlan) AddPersonal(offer CreditOffer) (SelectedCredit, error) {
	if err := offer.validate(); err != nil {
		return SelectedCredit{}, err
	}
	if err := ValidatePersonalCredit(offer.Principal, offer.TermMonths); err != nil {
		return SelectedCredit{}, err
	}
	selected := SelectedCredit{ID: newID(), Category: CategoryPersonal, CreditOffer: offer}
	p.Personal = append(p.Personal, selected)
	return selected, nil
}

// RemovePersonal removes a personal credit by identity.
func (p *AssetPlan) RemovePersonal(id string) error {
	for i, credit := range p.Personal {
		if credit.ID == id {
			p.Personal = append(p.Personal[:i:i], p.Personal[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("personal credit %s: %w", id, ErrNotFound)
}

// AuxiliaryExpenses derives the plan's auxiliary expenses.
func (p *AssetPlan) AuxiliaryExpenses() AuxiliaryExpenses {
	return CalculateAuxiliaryExpenses(p.Category, p.Price, p.Expenses, p.CustomExpenses)
}

// Target returns price plus auxiliary expenses.
func (p *AssetPlan) Target() decimal.Decimal {
	return p.Price.Add(p.AuxiliaryExpenses().Total)
}

// DownPaymentTotal sums the down payments.
func (p *AssetPlan) DownPaymentTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.DownPayments {
		total = total.Add(item.Amount)
	}
	return total
}

// PrimaryPrincipal returns the primary credit principal, zero if none.
func (p *AssetPlan) PrimaryPrincipal() decimal.Decimal {
	if p.Primary == nil {
		return decimal.Zero
	}
	return p.Primary.Principal
}

// PersonalPrincipalTotal sums the personal credit principals.
func (p *AssetPlan) PersonalPrincipalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, credit := range p.Personal {
		total = total.Add(credit.Principal)
	}
	return total
}

// IncomeTotal sums the declared monthly incomes.
func (p *AssetPlan) IncomeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range p.Incomes {
		total = total.Add(item.Amount)
	}
	return total
}

// TotalFinancing sums down payments and all credit principals.
func (p *AssetPlan) TotalFinancing() decimal.Decimal {
	return p.DownPaymentTotal().Add(p.PrimaryPrincipal()).Add(p.PersonalPrincipalTotal())
}

// Reconciliation reconciles the plan's financing against its target.
func (p *AssetPlan) Reconciliation() Reconciliation {
	return Reconcile(p.Target(), p.DownPaymentTotal(), p.PrimaryPrincipal(), p.PersonalPrincipalTotal())
}

// IsExact reports whether financing matches the target within one kuruş.
func (p *AssetPlan) IsExact() bool {
	return p.Reconciliation().IsExact()
}

// HasName reports whether the plan has a non-empty name.
func (p *AssetPlan) HasName() bool {
	return strings.TrimSpace(p.Name) != ""
}

// CanPersist reports whether the plan may be saved.
func (p *AssetPlan) CanPersist() bool {
	return p.IsExact() && p.HasName()
}

// PersistError explains why CanPersist is false, nil when it is true.
func (p *AssetPlan) PersistError() error {
	if err := p.Reconciliation().Err(); err != nil {
		return err
	}
	if !p.HasName() {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

// Violations re-checks the selected credits against the credit rules, e.g.
// after the price changed. Selection already enforces them, so an empty
// result is the normal case.
func (p *AssetPlan) Violations() []error {
	var errs []error
	if p.Primary != nil {
		if p.Primary.Category != p.Category {
			errs = append(errs, &ValidationError{
				Field:  "primaryCredit.category",
				Reason: fmt.Sprintf("%s credit on a %s plan", p.Primary.Category, p.Category),
			})
		} else if p.Category == CategoryVehicle {
			if err := ValidateVehicleCredit(p.Price, p.Primary.Principal); err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, credit := range p.Personal {
		if err := ValidatePersonalCredit(credit.Principal, credit.TermMonths); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Timeline builds the repayment timeline, labelled with calendar months when
// the plan has a start month.
func (p *AssetPlan) Timeline() (Timeline, error) {
	timeline := BuildTimeline(p.Primary, p.Personal)
	if p.StartMonth == "" {
		return timeline, nil
	}
	return timeline.Label(p.StartMonth)
}

// Clone returns a deep copy of the plan.
func (p *AssetPlan) Clone() *AssetPlan {
	clone := *p
	clone.DownPayments = append([]DownPayment{}, p.DownPayments...)
	clone.Personal = append([]SelectedCredit{}, p.Personal...)
	clone.Incomes = append([]MonthlyIncomeItem{}, p.Incomes...)
	clone.CustomExpenses = append([]CustomExpense{}, p.CustomExpenses...)
	if p.Primary != nil {
		primary := *p.Primary
		clone.Primary = &primary
	}
	return &clone
}
