// Package constants provides shared constants for the payment-planner application.
package constants

// DateTimeLayout is the calendar month format used for plan start months and
// period labels.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the number of fractional digits kept for currency
	DecimalPlaces = 2

	// CurrencyTolerance is the reconciliation epsilon (1 kuruş). Two amounts
	// closer than this are considered equal.
	CurrencyTolerance = "0.01"

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// MaxTermMonths is the longest credit term accepted anywhere (40 years)
	MaxTermMonths = 480

	// MaxMonthlyRatePercent bounds a quoted monthly rate. Larger values are
	// misread thousands groupings such as "1.890".
	MaxMonthlyRatePercent = 100
)

// Auxiliary expense defaults. The flat fees differ between the create and edit
// flows; both sets are kept as named profiles.
const (
	// DefaultTitleTransferRate is the title transfer fee as a fraction of price
	DefaultTitleTransferRate = "0.04"

	CreateLoanAllocationFee      = "5000"
	CreateAppraisalFee           = "3500"
	CreateLienRegistrationFee    = "1200"
	CreateHazardInsurancePremium = "1500"
	CreateRevolvingFundFee       = "1800"

	EditLoanAllocationFee      = "4000"
	EditAppraisalFee           = "3000"
	EditLienRegistrationFee    = "1000"
	EditHazardInsurancePremium = "1200"
	EditRevolvingFundFee       = "1600"

	// CreateVehicleTermMonths and EditVehicleTermMonths are the vehicle credit
	// terms preselected by the two flows.
	CreateVehicleTermMonths = 36
	EditVehicleTermMonths   = 48
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix prefixes environment overrides, e.g. PLANNER_SERVER_ADDRESS
	EnvPrefix = "PLANNER"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultQuoteTimeoutSeconds bounds a single quote provider call
	DefaultQuoteTimeoutSeconds = 10

	// DefaultDraftTTLHours is how long an unsaved draft is kept
	DefaultDraftTTLHours = 72

	// DefaultDraftKeyPrefix namespaces draft keys in redis
	DefaultDraftKeyPrefix = "planner:draft:"
)
