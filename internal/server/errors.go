package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errorResponse is the body of every failed request. Rule-specific fields
// are only set for the matching error kind.
type errorResponse struct {
	Error     string           `json:"error"`
	Field     string           `json:"field,omitempty"`
	Rule      planner.Rule     `json:"rule,omitempty"`
	Limit     *decimal.Decimal `json:"limit,omitempty"`
	Requested *decimal.Decimal `json:"requested,omitempty"`
	State     planner.State    `json:"state,omitempty"`
	Remaining *decimal.Decimal `json:"remaining,omitempty"`
}

// classify maps a domain error to its HTTP status and response body.
func classify(err error) (int, errorResponse) {
	body := errorResponse{Error: err.Error()}

	var validation *planner.ValidationError
	var limit *planner.LimitExceededError
	var mismatch *planner.ReconciliationMismatchError
	var malformed *planner.MalformedQuoteError

	switch {
	case errors.As(err, &limit):
		body.Rule = limit.Rule
		body.Limit = &limit.Limit
		body.Requested = &limit.Requested
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &mismatch):
		body.State = mismatch.State
		body.Remaining = &mismatch.Remaining
		return http.StatusConflict, body
	case errors.As(err, &validation):
		body.Field = validation.Field
		return http.StatusBadRequest, body
	case errors.As(err, &malformed):
		return http.StatusBadGateway, body
	case errors.Is(err, planner.ErrNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, planner.ErrUpstreamUnavailable):
		return http.StatusBadGateway, body
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, body
	}
	return http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}
}

func (h *handler) respondDomainError(w http.ResponseWriter, err error, op string) {
	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Error(err),
		)
	} else {
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	h.writeJSON(w, status, body)
}
