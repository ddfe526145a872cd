package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/format"
	"github.com/iwvelando/payment-planner/pkg/validation"
	"gopkg.in/yaml.v3"
)

const redacted = "REDACTED"

var (
	knownModes      = map[string]bool{"create": true, "edit": true}
	knownCategories = map[string]bool{"housing": true, "vehicle": true, "personal": true}
)

// Validate checks the configuration for values the service cannot run with.
func (c *Configuration) Validate() error {
	var errs []error

	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if err := validation.ValidateLogFormat(c.Logging.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseSize(c.Server.MaxBodySize); err != nil {
		errs = append(errs, fmt.Errorf("server.maxBodySize: %w", err))
	}
	if c.Quotes.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("quotes.timeout must be positive, got %s", c.Quotes.Timeout))
	}
	if !c.Auth.Disabled && c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwtSecret is required unless auth.disabled is set"))
	}
	if c.SMTP.Enabled && (c.SMTP.Host == "" || c.SMTP.From == "") {
		errs = append(errs, errors.New("smtp.host and smtp.from are required when smtp is enabled"))
	}

	for mode, profile := range c.Planner.Profiles {
		if !knownModes[mode] {
			errs = append(errs, fmt.Errorf("planner.profiles: unknown mode %q", mode))
			continue
		}
		errs = append(errs, profile.validate(mode)...)
	}
	for category, offers := range c.Planner.FallbackOffers {
		if !knownCategories[category] {
			errs = append(errs, fmt.Errorf("planner.fallbackOffers: unknown category %q", category))
			continue
		}
		for i, offer := range offers {
			errs = append(errs, offer.validate(fmt.Sprintf("planner.fallbackOffers.%s[%d]", category, i))...)
		}
	}

	return errors.Join(errs...)
}

func (p ProfileConfig) validate(mode string) []error {
	var errs []error
	fields := map[string]string{
		"titleTransferRate":      p.TitleTransferRate,
		"loanAllocationFee":      p.LoanAllocationFee,
		"appraisalFee":           p.AppraisalFee,
		"lienRegistrationFee":    p.LienRegistrationFee,
		"hazardInsurancePremium": p.HazardInsurancePremium,
		"revolvingFundFee":       p.RevolvingFundFee,
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		if value == "" {
			continue
		}
		amount, err := format.ParseDecimal(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("planner.profiles.%s.%s: %w", mode, name, err))
			continue
		}
		if amount.IsNegative() {
			errs = append(errs, fmt.Errorf("planner.profiles.%s.%s cannot be negative", mode, name))
		}
	}
	if p.VehicleTermMonths < 0 {
		errs = append(errs, fmt.Errorf("planner.profiles.%s.vehicleTermMonths cannot be negative", mode))
	}
	return errs
}

func (o FallbackOfferConfig) validate(path string) []error {
	var errs []error
	if strings.TrimSpace(o.LenderCode) == "" {
		errs = append(errs, fmt.Errorf("%s.lenderCode is required", path))
	}
	if _, err := format.ParseDecimal(o.Rate); err != nil {
		errs = append(errs, fmt.Errorf("%s.rate: %w", path, err))
	}
	for name, value := range map[string]string{"installment": o.Installment, "total": o.Total} {
		if value == "" {
			continue
		}
		if _, err := format.ParseDecimal(value); err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: %w", path, name, err))
		}
	}
	return errs
}

// Warnings returns non-fatal observations about the configuration.
func (c *Configuration) Warnings() []string {
	var warnings []string
	if c.Postgres.DSN == "" {
		warnings = append(warnings, "postgres.dsn is empty; plans are kept in memory and lost on restart")
	}
	if c.Redis.Address == "" {
		warnings = append(warnings, "redis.address is empty; drafts are kept in memory")
	}
	if c.Quotes.BaseURL == "" {
		warnings = append(warnings, "quotes.baseURL is empty; every quote is served from the fallback offers")
	}
	if c.Auth.Disabled {
		warnings = append(warnings, fmt.Sprintf("auth is disabled; every request is scoped to owner %q", c.Auth.DevOwner))
	}
	if !c.SMTP.Enabled {
		warnings = append(warnings, "smtp is disabled; shared plans are not e-mailed")
	}
	return warnings
}

// MaxBodySizeBytes returns the configured request body limit in bytes.
func (c *Configuration) MaxBodySizeBytes() int64 {
	size, err := ParseSize(c.Server.MaxBodySize)
	if err != nil || size <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return size
}

// Redacted renders the configuration as YAML with secrets masked.
func (c *Configuration) Redacted() ([]byte, error) {
	clone := *c
	if clone.Auth.JWTSecret != "" {
		clone.Auth.JWTSecret = redacted
	}
	if clone.Quotes.APIKey != "" {
		clone.Quotes.APIKey = redacted
	}
	if clone.Postgres.DSN != "" {
		clone.Postgres.DSN = redacted
	}
	if clone.Redis.Password != "" {
		clone.Redis.Password = redacted
	}
	if clone.SMTP.Password != "" {
		clone.SMTP.Password = redacted
	}

	data, err := yaml.Marshal(&clone)
	if err != nil {
		return nil, fmt.Errorf("failed to render configuration: %w", err)
	}
	return data, nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
