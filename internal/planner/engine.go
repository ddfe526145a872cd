package planner

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the single planner used by both the create and the edit flows.
// The mode only selects the default profile.
type Engine struct {
	logger   *zap.Logger
	profiles map[Mode]Profile
	lenders  LenderDirectory
}

// NewEngine creates an engine. Missing profiles fall back to
// DefaultProfiles and a nil lender directory to DefaultLenders.
func NewEngine(logger *zap.Logger, profiles map[Mode]Profile, lenders LenderDirectory) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	merged := DefaultProfiles()
	for mode, profile := range profiles {
		merged[mode] = profile
	}
	if lenders == nil {
		lenders = DefaultLenders
	}

	return &Engine{
		logger:   logger,
		profiles: merged,
		lenders:  lenders,
	}
}

// Profile returns the defaults for a mode.
func (e *Engine) Profile(mode Mode) (Profile, error) {
	profile, ok := e.profiles[mode]
	if !ok {
		return Profile{}, &ValidationError{Field: "mode", Reason: fmt.Sprintf("no profile for mode %q", mode)}
	}
	return profile, nil
}

// Lenders returns the lender directory used for display names.
func (e *Engine) Lenders() LenderDirectory {
	return e.lenders
}

// NewPlan starts a plan with the mode's profile.
func (e *Engine) NewPlan(mode Mode, category Category, price decimal.Decimal) (*AssetPlan, error) {
	profile, err := e.Profile(mode)
	if err != nil {
		return nil, err
	}
	plan, err := NewAssetPlan(mode, category, price, profile)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("started plan",
		zap.String("op", "planner.NewPlan"),
		zap.String("mode", string(mode)),
		zap.String("category", string(category)),
		zap.String("price", price.String()),
	)
	return plan, nil
}

// FromRecord rebuilds an editable plan from a persisted record using the
// record's mode profile for anything the record does not carry.
func (e *Engine) FromRecord(record PlanRecord) (*AssetPlan, error) {
	mode := record.Mode
	if mode == "" {
		mode = ModeCreate
	}
	profile, err := e.Profile(mode)
	if err != nil {
		return nil, err
	}
	return record.ToPlan(profile)
}

// Evaluate builds the plan report.
func (e *Engine) Evaluate(plan *AssetPlan) (Report, error) {
	report, err := plan.Report()
	if err != nil {
		return Report{}, fmt.Errorf("evaluating plan: %w", err)
	}

	e.logger.Debug(fmt.Sprintf("plan reconciled as %s", report.Reconciliation.State),
		zap.String("op", "planner.Evaluate"),
		zap.String("target", report.Target.String()),
		zap.String("remaining", report.Reconciliation.Remaining.String()),
		zap.Int("periods", len(report.Timeline)),
	)
	return report, nil
}

// Rank parses and orders provider records, logging every dropped record.
func (e *Engine) Rank(records []OfferRecord, principal decimal.Decimal, termMonths int) ([]CreditOffer, []error) {
	offers, errs := RankOffers(records, principal, termMonths, e.lenders)
	for _, err := range errs {
		e.logger.Warn("dropping malformed quote",
			zap.String("op", "planner.Rank"),
			zap.Error(err),
		)
	}
	return offers, errs
}
