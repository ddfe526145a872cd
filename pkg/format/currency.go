// Package format renders and parses monetary values in the Turkish locale
// convention: "." groups thousands and "," separates decimals.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// CurrencySymbol prefixes formatted amounts.
	CurrencySymbol = "₺"

	thousandsSeparator = "."
	decimalSeparator   = ","
)

var (
	plainNumber   = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)
	groupedNumber = regexp.MustCompile(`^[+-]?[0-9]{1,3}(\.[0-9]{3})+$`)
)

// Currency returns a currency string with the lira sign and separators (e.g., "-₺1.234,56").
func Currency(amount decimal.Decimal) string {
	formatted := formatPositive(amount.Abs())
	if amount.IsNegative() && formatted != "0,00" {
		return "-" + CurrencySymbol + formatted
	}
	return CurrencySymbol + formatted
}

func formatPositive(value decimal.Decimal) string {
	formatted := value.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteString(thousandsSeparator)
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + decimalSeparator + decPart
}

// ParseDecimal parses a locale-formatted number such as "3,15", "12.345,67"
// or "12.345". A lone dot is read as a decimal point unless the text is a
// well-formed thousands grouping ("1.250" is one thousand two hundred fifty).
// Surrounding whitespace, a percent sign and the currency symbol are ignored.
func ParseDecimal(text string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimPrefix(cleaned, "%")
	cleaned = strings.ReplaceAll(cleaned, CurrencySymbol, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty numeric text %q", text)
	}

	switch strings.Count(cleaned, decimalSeparator) {
	case 0:
		if groupedNumber.MatchString(cleaned) {
			cleaned = strings.ReplaceAll(cleaned, thousandsSeparator, "")
		}
	case 1:
		intPart, fracPart, _ := strings.Cut(cleaned, decimalSeparator)
		if strings.Contains(intPart, thousandsSeparator) && !groupedNumber.MatchString(intPart) {
			return decimal.Zero, fmt.Errorf("malformed thousands grouping in %q", text)
		}
		cleaned = strings.ReplaceAll(intPart, thousandsSeparator, "") + "." + fracPart
	default:
		return decimal.Zero, fmt.Errorf("multiple decimal separators in %q", text)
	}

	if !plainNumber.MatchString(cleaned) {
		return decimal.Zero, fmt.Errorf("malformed numeric text %q", text)
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("malformed numeric text %q: %w", text, err)
	}
	return value, nil
}
