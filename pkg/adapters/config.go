// Package adapters converts configuration values into planner domain types.
package adapters

import (
	"fmt"

	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/shopspring/decimal"
)

// ProfilesFromConfig applies the configured overrides on top of the built-in
// profiles. Fields left empty keep their default.
func ProfilesFromConfig(conf config.PlannerConfig) (map[planner.Mode]planner.Profile, error) {
	profiles := planner.DefaultProfiles()

	for name, override := range conf.Profiles {
		mode, err := planner.ParseMode(name)
		if err != nil {
			return nil, err
		}
		profile := profiles[mode]

		fields := []struct {
			name   string
			value  string
			target *decimal.Decimal
		}{
			{"titleTransferRate", override.TitleTransferRate, &profile.Expenses.TitleTransferRate},
			{"loanAllocationFee", override.LoanAllocationFee, &profile.Expenses.LoanAllocationFee},
			{"appraisalFee", override.AppraisalFee, &profile.Expenses.AppraisalFee},
			{"lienRegistrationFee", override.LienRegistrationFee, &profile.Expenses.LienRegistrationFee},
			{"hazardInsurancePremium", override.HazardInsurancePremium, &profile.Expenses.HazardInsurancePremium},
			{"revolvingFundFee", override.RevolvingFundFee, &profile.Expenses.RevolvingFundFee},
		}
		for _, field := range fields {
			if field.value == "" {
				continue
			}
			amount, err := format.ParseDecimal(field.value)
			if err != nil {
				return nil, fmt.Errorf("profile %s field %s: %w", name, field.name, err)
			}
			*field.target = amount
		}
		if override.VehicleTermMonths > 0 {
			profile.VehicleTermMonths = override.VehicleTermMonths
		}

		profiles[mode] = profile
	}

	return profiles, nil
}

// LendersFromConfig merges configured display names into the built-in table.
func LendersFromConfig(conf config.PlannerConfig) planner.LenderDirectory {
	return planner.DefaultLenders.Merge(conf.Lenders)
}

// FallbackOffersFromConfig converts the static offer list into provider
// records so they go through the same parse and rank step as live quotes.
func FallbackOffersFromConfig(conf config.PlannerConfig) (map[planner.Category][]planner.OfferRecord, error) {
	fallback := make(map[planner.Category][]planner.OfferRecord, len(conf.FallbackOffers))
	for name, offers := range conf.FallbackOffers {
		category, err := planner.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		records := make([]planner.OfferRecord, 0, len(offers))
		for _, offer := range offers {
			records = append(records, planner.OfferRecord{
				LenderCode:      offer.LenderCode,
				RateText:        offer.Rate,
				InstallmentText: offer.Installment,
				TotalText:       offer.Total,
			})
		}
		fallback[category] = records
	}
	return fallback, nil
}
