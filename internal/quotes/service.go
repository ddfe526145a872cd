package quotes

import (
	"context"
	"fmt"

	"github.com/iwvelando/payment-planner/internal/metrics"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Request describes the credit a caller wants offers for. AssetPrice is
// required for vehicle credits to apply the loan-to-value band.
type Request struct {
	RequestID  string
	Category   planner.Category
	Principal  decimal.Decimal
	TermMonths int
	AssetPrice decimal.Decimal
}

// Response carries ranked offers. RequestID echoes the request so callers
// can discard answers to selections that changed in the meantime.
type Response struct {
	RequestID  string                `json:"requestId,omitempty"`
	Category   planner.Category      `json:"category"`
	Principal  decimal.Decimal       `json:"principal"`
	TermMonths int                   `json:"termMonths"`
	Offers     []planner.CreditOffer `json:"offers"`
	Fallback   bool                  `json:"fallback"`
	Notice     string                `json:"notice,omitempty"`
	Dropped    int                   `json:"dropped"`
}

// Service gates, fetches and ranks credit offers.
type Service struct {
	logger   *zap.Logger
	engine   *planner.Engine
	provider Provider
	fallback map[planner.Category][]planner.OfferRecord
	metrics  *metrics.Metrics
}

// NewService creates a quote service. A nil provider serves every request
// from the fallback list.
func NewService(logger *zap.Logger, engine *planner.Engine, provider Provider, fallback map[planner.Category][]planner.OfferRecord, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fallback == nil {
		fallback = map[planner.Category][]planner.OfferRecord{}
	}
	return &Service{
		logger:   logger,
		engine:   engine,
		provider: provider,
		fallback: fallback,
		metrics:  m,
	}
}

// Gate applies the credit rules before any quote is requested.
func Gate(req Request) error {
	if !req.Category.Valid() {
		return &planner.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", req.Category)}
	}
	if !req.Principal.IsPositive() {
		return &planner.ValidationError{Field: "principal", Reason: "must be greater than zero"}
	}
	if err := planner.ValidateTerm(req.TermMonths); err != nil {
		return err
	}

	switch req.Category {
	case planner.CategoryPersonal:
		return planner.ValidatePersonalCredit(req.Principal, req.TermMonths)
	case planner.CategoryVehicle:
		return planner.ValidateVehicleCredit(req.AssetPrice, req.Principal)
	}
	return nil
}

// Quote returns ranked offers. Gate failures are returned before the
// provider is called. Provider failures, and responses that are empty or
// whose records are all malformed, are answered from the fallback list with
// Fallback set.
func (s *Service) Quote(ctx context.Context, req Request) (Response, error) {
	if err := Gate(req); err != nil {
		s.metrics.QuoteServed(string(req.Category), metrics.SourceRejected)
		return Response{}, err
	}

	resp := Response{
		RequestID:  req.RequestID,
		Category:   req.Category,
		Principal:  req.Principal,
		TermMonths: req.TermMonths,
	}

	if s.provider != nil {
		records, err := s.provider.Quote(ctx, req.Category, req.Principal, req.TermMonths)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Response{}, ctxErr
			}
			s.logger.Warn("quote provider unavailable, serving fallback offers",
				zap.String("op", "quotes.Quote"),
				zap.String("category", string(req.Category)),
				zap.Error(err),
			)
			return s.serveFallback(resp, "Live quotes are unavailable; showing indicative offers."), nil
		}

		offers, errs := s.engine.Rank(records, req.Principal, req.TermMonths)
		s.metrics.MalformedQuotes(string(req.Category), len(errs))
		if len(offers) > 0 {
			resp.Offers = offers
			resp.Dropped = len(errs)
			s.metrics.QuoteServed(string(req.Category), metrics.SourceProvider)
			return resp, nil
		}

		resp.Dropped = len(errs)
		if len(records) == 0 {
			s.logger.Warn("quote provider returned no offers, serving fallback offers",
				zap.String("op", "quotes.Quote"),
				zap.String("category", string(req.Category)),
			)
			return s.serveFallback(resp, "Live quotes returned no offers; showing indicative offers."), nil
		}

		s.logger.Warn("every quote record was malformed, serving fallback offers",
			zap.String("op", "quotes.Quote"),
			zap.String("category", string(req.Category)),
			zap.Int("dropped", len(errs)),
		)
		return s.serveFallback(resp, "Live quotes could not be read; showing indicative offers."), nil
	}

	return s.serveFallback(resp, "Live quotes are not configured; showing indicative offers."), nil
}

func (s *Service) serveFallback(resp Response, notice string) Response {
	offers, errs := s.engine.Rank(s.fallback[resp.Category], resp.Principal, resp.TermMonths)
	if len(errs) > 0 {
		s.logger.Error("fallback offers contain malformed records",
			zap.String("op", "quotes.serveFallback"),
			zap.String("category", string(resp.Category)),
			zap.Int("dropped", len(errs)),
		)
	}
	for i := range offers {
		offers[i].Fallback = true
	}

	resp.Offers = offers
	resp.Fallback = true
	resp.Notice = notice
	s.metrics.QuoteServed(string(resp.Category), metrics.SourceFallback)
	return resp
}
