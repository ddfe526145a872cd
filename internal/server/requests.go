package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/internal/quotes"
	"github.com/shopspring/decimal"
)

// amountItem is a down payment, income or custom expense line.
type amountItem struct {
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Description string          `json:"description" validate:"max=200"`
}

type offerRequest struct {
	LenderCode         string          `json:"lenderCode" validate:"required"`
	LenderName         string          `json:"lenderName"`
	Principal          decimal.Decimal `json:"principal" validate:"gt=0"`
	Rate               decimal.Decimal `json:"rate" validate:"gte=0"`
	MonthlyInstallment decimal.Decimal `json:"monthlyInstallment" validate:"gte=0"`
	TotalRepayment     decimal.Decimal `json:"totalRepayment" validate:"gte=0"`
	TermMonths         int             `json:"termMonths" validate:"gt=0,lte=480"`
	Fallback           bool            `json:"fallback"`
}

func (o offerRequest) offer() planner.CreditOffer {
	return planner.CreditOffer{
		LenderCode:         o.LenderCode,
		LenderName:         o.LenderName,
		Principal:          o.Principal,
		Rate:               o.Rate,
		MonthlyInstallment: o.MonthlyInstallment,
		TotalRepayment:     o.TotalRepayment,
		TermMonths:         o.TermMonths,
		Fallback:           o.Fallback,
	}
}

// planRequest carries a whole plan. Its keys match the plan JSON returned
// by the draft endpoints so a draft can be sent back unchanged.
type planRequest struct {
	Name            string          `json:"name" validate:"max=200"`
	Mode            string          `json:"mode" validate:"omitempty,oneof=create edit"`
	Category        string          `json:"category" validate:"required,oneof=housing vehicle"`
	Price           decimal.Decimal `json:"price" validate:"gt=0"`
	StartMonth      string          `json:"startMonth" validate:"omitempty,datetime=2006-01"`
	SharedWith      string          `json:"sharedWith" validate:"omitempty,email"`
	DownPayments    []amountItem    `json:"downPayments" validate:"dive"`
	PrimaryCredit   *offerRequest   `json:"primaryCredit"`
	PersonalCredits []offerRequest  `json:"personalCredits" validate:"dive"`
	MonthlyIncomes  []amountItem    `json:"monthlyIncomes" validate:"dive"`
	CustomExpenses  []amountItem    `json:"customExpenses" validate:"dive"`
}

// build replays the request through the plan operations so every credit
// rule applies as if the user had entered it.
func (req planRequest) build(engine *planner.Engine) (*planner.AssetPlan, error) {
	mode, err := planner.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	category, err := planner.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	plan, err := engine.NewPlan(mode, category, req.Price)
	if err != nil {
		return nil, err
	}
	plan.SetName(req.Name)
	plan.SharedWith = req.SharedWith
	if err := plan.SetStartMonth(req.StartMonth); err != nil {
		return nil, err
	}

	for i, item := range req.DownPayments {
		if _, err := plan.AddDownPayment(item.Amount, item.Description); err != nil {
			return nil, fmt.Errorf("downPayments[%d]: %w", i, err)
		}
	}
	for i, item := range req.MonthlyIncomes {
		if _, err := plan.AddIncome(item.Amount, item.Description); err != nil {
			return nil, fmt.Errorf("monthlyIncomes[%d]: %w", i, err)
		}
	}
	for i, item := range req.CustomExpenses {
		if _, err := plan.AddCustomExpense(item.Amount, item.Description); err != nil {
			return nil, fmt.Errorf("customExpenses[%d]: %w", i, err)
		}
	}
	if req.PrimaryCredit != nil {
		if _, err := plan.SelectPrimary(req.PrimaryCredit.offer()); err != nil {
			return nil, fmt.Errorf("primaryCredit: %w", err)
		}
	}
	for i, credit := range req.PersonalCredits {
		if _, err := plan.AddPersonal(credit.offer()); err != nil {
			return nil, fmt.Errorf("personalCredits[%d]: %w", i, err)
		}
	}
	return plan, nil
}

type quoteRequest struct {
	RequestID  string          `json:"requestId" validate:"max=100"`
	Category   string          `json:"category" validate:"required,oneof=housing vehicle personal"`
	Principal  decimal.Decimal `json:"principal" validate:"gt=0"`
	TermMonths int             `json:"termMonths" validate:"gt=0,lte=480"`
	AssetPrice decimal.Decimal `json:"assetPrice" validate:"gte=0"`
}

func (req quoteRequest) quote() quotes.Request {
	return quotes.Request{
		RequestID:  req.RequestID,
		Category:   planner.Category(req.Category),
		Principal:  req.Principal,
		TermMonths: req.TermMonths,
		AssetPrice: req.AssetPrice,
	}
}

// newValidator returns a validator that reports JSON field names and
// compares decimals numerically.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// validationError converts the first validator failure into a planner
// validation error.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &planner.ValidationError{Field: "body", Reason: err.Error()}
	}

	fe := fieldErrs[0]
	field := strings.TrimPrefix(fe.Namespace(), strings.SplitN(fe.Namespace(), ".", 2)[0]+".")
	reason := fmt.Sprintf("failed the %q rule", fe.Tag())
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gt":
		reason = fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		reason = fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		reason = fmt.Sprintf("must be one of %s", fe.Param())
	case "email":
		reason = "must be an e-mail address"
	case "datetime":
		reason = "must be a month in YYYY-MM form"
	}
	return &planner.ValidationError{Field: field, Reason: reason}
}
