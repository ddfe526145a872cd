package planner

import (
	"fmt"

	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/shopspring/decimal"
)

// Report is the evaluated state of a plan: expenses, reconciliation,
// repayment timeline and affordability.
type Report struct {
	Name                string                `json:"name,omitempty"`
	Mode                Mode                  `json:"mode"`
	Category            Category              `json:"category"`
	Price               decimal.Decimal       `json:"price"`
	AuxiliaryExpenses   AuxiliaryExpenses     `json:"auxiliaryExpenses"`
	Target              decimal.Decimal       `json:"target"`
	Reconciliation      Reconciliation        `json:"reconciliation"`
	Timeline            Timeline              `json:"timeline"`
	Yearly              []YearlyRepayment     `json:"yearly"`
	TotalIncome         decimal.Decimal       `json:"totalIncome"`
	Affordability       []AffordabilityResult `json:"affordability"`
	Affordable          bool                  `json:"affordable"`
	TotalMonthlyPayment decimal.Decimal       `json:"totalMonthlyPayment"`
	MaxMonthlyPayment   decimal.Decimal       `json:"maxMonthlyPayment"`
	TotalRepayment      decimal.Decimal       `json:"totalRepayment"`
	Persistable         bool                  `json:"persistable"`
	Warnings            []string              `json:"warnings"`
}

// Report evaluates the plan. It only fails when the start month cannot be
// used to label the timeline.
func (p *AssetPlan) Report() (Report, error) {
	timeline, err := p.Timeline()
	if err != nil {
		return Report{}, err
	}

	expenses := p.AuxiliaryExpenses()
	reconciliation := p.Reconciliation()
	income := p.IncomeTotal()
	affordability := CheckAffordability(income, timeline)

	report := Report{
		Name:                p.Name,
		Mode:                p.Mode,
		Category:            p.Category,
		Price:               p.Price,
		AuxiliaryExpenses:   expenses,
		Target:              p.Price.Add(expenses.Total),
		Reconciliation:      reconciliation,
		Timeline:            timeline,
		Yearly:              timeline.Yearly(),
		TotalIncome:         income,
		Affordability:       affordability,
		Affordable:          Affordable(affordability),
		TotalMonthlyPayment: decimal.Zero,
		MaxMonthlyPayment:   timeline.MaxObligation(),
		TotalRepayment:      timeline.Total(),
		Persistable:         reconciliation.IsExact() && p.HasName(),
		Warnings:            []string{},
	}
	if len(timeline) > 0 {
		report.TotalMonthlyPayment = timeline[0].MonthlyObligation
	}

	if err := reconciliation.Err(); err != nil {
		report.Warnings = append(report.Warnings, err.Error())
	}
	for _, result := range affordability {
		if result.Verdict != VerdictInsufficient {
			continue
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"income falls short by %s per month in months %d-%d",
			format.Currency(result.Balance.Neg()), result.StartMonth, result.EndMonth))
	}
	for _, violation := range p.Violations() {
		report.Warnings = append(report.Warnings, violation.Error())
	}

	return report, nil
}
