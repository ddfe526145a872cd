package planner

import (
	"fmt"
	"sort"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/datetime"
	"github.com/iwvelando/payment-planner/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// RepaymentPeriod is a contiguous span of months with a fixed set of active
// credits. Months are 1-based and inclusive.
type RepaymentPeriod struct {
	StartMonth        int             `json:"startMonth"`
	EndMonth          int             `json:"endMonth"`
	Credits           []string        `json:"credits"`
	MonthlyObligation decimal.Decimal `json:"monthlyObligation"`
	StartLabel        string          `json:"startLabel,omitempty"`
	EndLabel          string          `json:"endLabel,omitempty"`
}

// Months returns the number of months the period spans.
func (p RepaymentPeriod) Months() int {
	return p.EndMonth - p.StartMonth + 1
}

// YearlyRepayment sums the obligations of one repayment year.
type YearlyRepayment struct {
	Year   int             `json:"year"`
	Months int             `json:"months"`
	Total  decimal.Decimal `json:"total"`
}

// Timeline is the ordered list of repayment periods of a plan.
type Timeline []RepaymentPeriod

// BuildTimeline derives the repayment periods from the selected credits.
// Period boundaries fall on every distinct term; a credit is active in a
// period iff the period ends on or before its term. Inputs are not mutated
// and the result is rebuilt from scratch on every call.
func BuildTimeline(primary *SelectedCredit, personal []SelectedCredit) Timeline {
	credits := make([]SelectedCredit, 0, len(personal)+1)
	if primary != nil && primary.TermMonths > 0 {
		credits = append(credits, *primary)
	}
	for _, credit := range personal {
		if credit.TermMonths > 0 {
			credits = append(credits, credit)
		}
	}
	if len(credits) == 0 {
		return Timeline{}
	}

	seen := make(map[int]struct{}, len(credits))
	boundaries := make([]int, 0, len(credits))
	for _, credit := range credits {
		if _, ok := seen[credit.TermMonths]; ok {
			continue
		}
		seen[credit.TermMonths] = struct{}{}
		boundaries = append(boundaries, credit.TermMonths)
	}
	sort.Ints(boundaries)

	timeline := make(Timeline, 0, len(boundaries))
	previous := 0
	for _, boundary := range boundaries {
		period := RepaymentPeriod{
			StartMonth:        previous + 1,
			EndMonth:          boundary,
			Credits:           []string{},
			MonthlyObligation: decimal.Zero,
		}
		for _, credit := range credits {
			if boundary <= credit.TermMonths {
				period.Credits = append(period.Credits, credit.Description())
				period.MonthlyObligation = period.MonthlyObligation.Add(credit.MonthlyInstallment)
			}
		}
		previous = boundary
		if len(period.Credits) == 0 {
			continue
		}
		timeline = append(timeline, period)
	}

	return timeline
}

// MaxMonth returns the last repayment month, zero for an empty timeline.
func (t Timeline) MaxMonth() int {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].EndMonth
}

// MaxObligation returns the highest monthly obligation across all periods.
func (t Timeline) MaxObligation() decimal.Decimal {
	highest := decimal.Zero
	for _, period := range t {
		highest = mathutil.Max(highest, period.MonthlyObligation)
	}
	return highest
}

// Total returns the sum of all monthly obligations over the timeline.
func (t Timeline) Total() decimal.Decimal {
	total := decimal.Zero
	for _, period := range t {
		total = total.Add(period.MonthlyObligation.Mul(decimal.NewFromInt(int64(period.Months()))))
	}
	return total
}

// Yearly aggregates the timeline into repayment years of twelve months.
func (t Timeline) Yearly() []YearlyRepayment {
	maxMonth := t.MaxMonth()
	if maxMonth == 0 {
		return []YearlyRepayment{}
	}

	years := (maxMonth + constants.MonthsPerYear - 1) / constants.MonthsPerYear
	yearly := make([]YearlyRepayment, years)
	for i := range yearly {
		yearly[i] = YearlyRepayment{Year: i + 1, Total: decimal.Zero}
	}

	for _, period := range t {
		for year := range yearly {
			yearStart := year*constants.MonthsPerYear + 1
			yearEnd := yearStart + constants.MonthsPerYear - 1
			start := max(period.StartMonth, yearStart)
			end := min(period.EndMonth, yearEnd)
			if start > end {
				continue
			}
			months := end - start + 1
			yearly[year].Months += months
			yearly[year].Total = yearly[year].Total.Add(period.MonthlyObligation.Mul(decimal.NewFromInt(int64(months))))
		}
	}

	return yearly
}

// Label returns a copy of the timeline with calendar month labels, where
// startMonth (YYYY-MM) is the month of the first installment.
func (t Timeline) Label(startMonth string) (Timeline, error) {
	if err := datetime.ValidateMonth(startMonth); err != nil {
		return nil, &ValidationError{Field: "startMonth", Reason: err.Error()}
	}

	labeled := make(Timeline, len(t))
	for i, period := range t {
		start, err := datetime.MonthLabel(startMonth, period.StartMonth)
		if err != nil {
			return nil, fmt.Errorf("labelling period %d: %w", i, err)
		}
		end, err := datetime.MonthLabel(startMonth, period.EndMonth)
		if err != nil {
			return nil, fmt.Errorf("labelling period %d: %w", i, err)
		}
		period.Credits = append([]string(nil), period.Credits...)
		period.StartLabel = start
		period.EndLabel = end
		labeled[i] = period
	}
	return labeled, nil
}
