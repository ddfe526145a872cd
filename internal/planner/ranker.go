package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/iwvelando/payment-planner/pkg/loans"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// OfferRecord is a raw quote as returned by a provider. Numeric fields are
// text in the provider's locale ("1,89", "12.345,67").
type OfferRecord struct {
	LenderCode      string `json:"lenderCode"`
	RateText        string `json:"rate"`
	InstallmentText string `json:"installment"`
	TotalText       string `json:"total"`
}

// LenderDirectory maps lender codes to display names.
type LenderDirectory map[string]string

// DefaultLenders is the built-in lender code table.
var DefaultLenders = LenderDirectory{
	"akbank":         "Akbank",
	"albaraka":       "Albaraka Türk",
	"denizbank":      "DenizBank",
	"enpara":         "Enpara.com",
	"garanti-bbva":   "Garanti BBVA",
	"halkbank":       "Halkbank",
	"ing":            "ING",
	"is-bankasi":     "İş Bankası",
	"kuveyt-turk":    "Kuveyt Türk",
	"qnb-finansbank": "QNB Finansbank",
	"teb":            "TEB",
	"vakifbank":      "VakıfBank",
	"yapi-kredi":     "Yapı Kredi",
	"ziraat-bankasi": "Ziraat Bankası",
}

// Merge returns a new directory with overrides applied on top of d.
func (d LenderDirectory) Merge(overrides map[string]string) LenderDirectory {
	merged := make(LenderDirectory, len(d)+len(overrides))
	for code, name := range d {
		merged[code] = name
	}
	for code, name := range overrides {
		merged[strings.ToLower(code)] = name
	}
	return merged
}

// DisplayName resolves a lender code. Unknown codes are title-cased with
// hyphens rendered as spaces, e.g. "yeni-banka" becomes "Yeni Banka".
func (d LenderDirectory) DisplayName(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if name, ok := d[normalized]; ok {
		return name
	}
	// cases.Caser keeps state, so one is built per call.
	return cases.Title(language.Und).String(strings.ReplaceAll(normalized, "-", " "))
}

var maxMonthlyRate = decimal.NewFromInt(constants.MaxMonthlyRatePercent)

// ParseOffer converts one provider record into a CreditOffer for the quoted
// principal and term. An empty installment is derived from the rate with the
// annuity formula and an empty total from installment × term; any other
// unparseable field yields a MalformedQuoteError.
func ParseOffer(record OfferRecord, principal decimal.Decimal, termMonths int, names LenderDirectory) (CreditOffer, error) {
	malformed := func(field, text string, err error) error {
		return &MalformedQuoteError{LenderCode: record.LenderCode, Field: field, Text: text, Err: err}
	}

	if strings.TrimSpace(record.LenderCode) == "" {
		return CreditOffer{}, malformed("lenderCode", record.LenderCode, nil)
	}

	rate, err := format.ParseDecimal(record.RateText)
	if err != nil {
		return CreditOffer{}, malformed("rate", record.RateText, err)
	}
	if rate.IsNegative() {
		return CreditOffer{}, malformed("rate", record.RateText, nil)
	}
	if rate.GreaterThan(maxMonthlyRate) {
		return CreditOffer{}, malformed("rate", record.RateText,
			fmt.Errorf("monthly rate above %d%%", constants.MaxMonthlyRatePercent))
	}

	var installment decimal.Decimal
	if strings.TrimSpace(record.InstallmentText) == "" {
		installment, err = loans.CalculateMonthlyPayment(loans.Terms{
			Principal:   principal,
			MonthlyRate: rate,
			TermMonths:  termMonths,
		})
	} else {
		installment, err = format.ParseDecimal(record.InstallmentText)
	}
	if err != nil || installment.IsNegative() {
		return CreditOffer{}, malformed("installment", record.InstallmentText, err)
	}

	var total decimal.Decimal
	if strings.TrimSpace(record.TotalText) == "" {
		total = loans.CalculateTotalRepayment(installment, termMonths)
	} else {
		total, err = format.ParseDecimal(record.TotalText)
		if err != nil || total.IsNegative() {
			return CreditOffer{}, malformed("total", record.TotalText, err)
		}
	}

	return CreditOffer{
		LenderCode:         strings.ToLower(strings.TrimSpace(record.LenderCode)),
		LenderName:         names.DisplayName(record.LenderCode),
		Principal:          principal,
		Rate:               rate,
		MonthlyInstallment: installment,
		TotalRepayment:     total,
		TermMonths:         termMonths,
	}, nil
}

// RankOffers parses the provider records and orders them by rate, lowest
// first. Ties keep provider order. Malformed records are dropped and reported
// in the returned error slice.
func RankOffers(records []OfferRecord, principal decimal.Decimal, termMonths int, names LenderDirectory) ([]CreditOffer, []error) {
	offers := make([]CreditOffer, 0, len(records))
	var errs []error
	for _, record := range records {
		offer, err := ParseOffer(record, principal, termMonths, names)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		offers = append(offers, offer)
	}

	SortOffers(offers)
	return offers, errs
}

// SortOffers stable-sorts offers by rate ascending in place.
func SortOffers(offers []CreditOffer) {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Rate.LessThan(offers[j].Rate)
	})
}
