package planner

import (
	"github.com/shopspring/decimal"
)

// Verdict is the affordability outcome of a period.
type Verdict string

const (
	VerdictSufficient   Verdict = "sufficient"
	VerdictInsufficient Verdict = "insufficient"
)

// AffordabilityResult compares declared income against one period's
// obligation. A negative Balance is a monthly deficit.
type AffordabilityResult struct {
	StartMonth    int             `json:"startMonth"`
	EndMonth      int             `json:"endMonth"`
	Income        decimal.Decimal `json:"income"`
	Obligation    decimal.Decimal `json:"obligation"`
	Balance       decimal.Decimal `json:"balance"`
	Verdict       Verdict         `json:"verdict"`
	Informational bool            `json:"informational,omitempty"`
}

// CheckAffordability evaluates each period of the timeline against the total
// monthly income. With no credits it returns one informational result
// against a zero obligation. The check is advisory and never affects
// reconciliation.
func CheckAffordability(totalIncome decimal.Decimal, timeline Timeline) []AffordabilityResult {
	if len(timeline) == 0 {
		return []AffordabilityResult{{
			Income:        totalIncome,
			Obligation:    decimal.Zero,
			Balance:       totalIncome,
			Verdict:       VerdictSufficient,
			Informational: true,
		}}
	}

	results := make([]AffordabilityResult, 0, len(timeline))
	for _, period := range timeline {
		balance := totalIncome.Sub(period.MonthlyObligation)
		verdict := VerdictSufficient
		if balance.IsNegative() {
			verdict = VerdictInsufficient
		}
		results = append(results, AffordabilityResult{
			StartMonth: period.StartMonth,
			EndMonth:   period.EndMonth,
			Income:     totalIncome,
			Obligation: period.MonthlyObligation,
			Balance:    balance,
			Verdict:    verdict,
		})
	}
	return results
}

// Affordable reports whether every result is sufficient.
func Affordable(results []AffordabilityResult) bool {
	for _, result := range results {
		if result.Verdict == VerdictInsufficient {
			return false
		}
	}
	return true
}
