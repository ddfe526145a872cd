package planner

import (
	"github.com/shopspring/decimal"
)

// personalTier caps the term of a personal credit up to a given amount.
type personalTier struct {
	maxAmount decimal.Decimal
	maxTerm   int
}

// vehicleBand caps the principal of a vehicle credit as a share of price.
type vehicleBand struct {
	minPrice decimal.Decimal
	maxPrice decimal.Decimal
	ratio    decimal.Decimal
}

// Tiers are ordered by amount; the first tier an amount fits into grants the
// longest term.
var personalTiers = []personalTier{
	{maxAmount: decimal.NewFromInt(125000), maxTerm: 36},
	{maxAmount: decimal.NewFromInt(250000), maxTerm: 24},
	{maxAmount: decimal.NewFromInt(500000), maxTerm: 12},
}

var vehicleBands = []vehicleBand{
	{
		minPrice: decimal.RequireFromString("400000.01"),
		maxPrice: decimal.NewFromInt(800000),
		ratio:    decimal.RequireFromString("0.50"),
	},
	{
		minPrice: decimal.RequireFromString("800000.01"),
		maxPrice: decimal.NewFromInt(1200000),
		ratio:    decimal.RequireFromString("0.30"),
	},
	{
		minPrice: decimal.RequireFromString("1200000.01"),
		maxPrice: decimal.NewFromInt(2000000),
		ratio:    decimal.RequireFromString("0.20"),
	},
}

// MaxPersonalAmount returns the largest personal credit amount allowed for
// the given term, or zero when no tier allows the term.
func MaxPersonalAmount(termMonths int) decimal.Decimal {
	limit := decimal.Zero
	for _, tier := range personalTiers {
		if termMonths <= tier.maxTerm && tier.maxAmount.GreaterThan(limit) {
			limit = tier.maxAmount
		}
	}
	return limit
}

// MaxPersonalTerm returns the longest term allowed for the given amount, or
// zero when the amount exceeds every tier.
func MaxPersonalTerm(amount decimal.Decimal) int {
	for _, tier := range personalTiers {
		if amount.LessThanOrEqual(tier.maxAmount) {
			return tier.maxTerm
		}
	}
	return 0
}

// ValidatePersonalCredit gates a personal credit request before any quote is
// requested.
func ValidatePersonalCredit(amount decimal.Decimal, termMonths int) error {
	if !amount.IsPositive() {
		return &ValidationError{Field: "principal", Reason: "must be greater than zero"}
	}
	if termMonths <= 0 {
		return &ValidationError{Field: "termMonths", Reason: "must be at least one month"}
	}

	maxTerm := MaxPersonalTerm(amount)
	if maxTerm == 0 {
		return &LimitExceededError{
			Rule:      RulePersonalAmount,
			Limit:     personalTiers[len(personalTiers)-1].maxAmount,
			Requested: amount,
		}
	}
	if termMonths > maxTerm {
		return &LimitExceededError{
			Rule:      RulePersonalTerm,
			Limit:     decimal.NewFromInt(int64(maxTerm)),
			Requested: decimal.NewFromInt(int64(termMonths)),
		}
	}
	return nil
}

// MaxVehiclePrincipal returns the loan-to-value ceiling for a vehicle price.
// Zero means vehicle credit is unavailable and the buyer has to use personal
// credit instead.
func MaxVehiclePrincipal(price decimal.Decimal) decimal.Decimal {
	for _, band := range vehicleBands {
		if price.GreaterThanOrEqual(band.minPrice) && price.LessThanOrEqual(band.maxPrice) {
			return price.Mul(band.ratio)
		}
	}
	return decimal.Zero
}

// ValidateVehicleCredit gates a vehicle credit request against the
// loan-to-value band of the vehicle price.
func ValidateVehicleCredit(price, principal decimal.Decimal) error {
	if !price.IsPositive() {
		return &ValidationError{Field: "price", Reason: "must be greater than zero"}
	}
	if !principal.IsPositive() {
		return &ValidationError{Field: "principal", Reason: "must be greater than zero"}
	}

	limit := MaxVehiclePrincipal(price)
	if limit.IsZero() {
		return &LimitExceededError{Rule: RuleVehicleUnavailable, Limit: limit, Requested: principal}
	}
	if principal.GreaterThan(limit) {
		return &LimitExceededError{Rule: RuleVehicleLoanToValue, Limit: limit, Requested: principal}
	}
	return nil
}
