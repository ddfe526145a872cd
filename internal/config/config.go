// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for payment-planner.
type Configuration struct {
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Auth     AuthConfig     `yaml:"auth,omitempty"`
	Planner  PlannerConfig  `yaml:"planner,omitempty"`
	Quotes   QuotesConfig   `yaml:"quotes,omitempty"`
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	SMTP     SMTPConfig     `yaml:"smtp,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MaxBodySize     string        `yaml:"maxBodySize"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// AuthConfig configures bearer token verification. Tokens are issued
// elsewhere; the subject claim is the plan owner.
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret,omitempty"`
	Issuer    string `yaml:"issuer,omitempty"`
	// Disabled skips verification and scopes every request to DevOwner.
	Disabled bool   `yaml:"disabled,omitempty"`
	DevOwner string `yaml:"devOwner,omitempty"`
}

// PlannerConfig carries the engine defaults. Amounts are decimal strings.
type PlannerConfig struct {
	Profiles       map[string]ProfileConfig         `yaml:"profiles,omitempty"`
	Lenders        map[string]string                `yaml:"lenders,omitempty"`
	FallbackOffers map[string][]FallbackOfferConfig `yaml:"fallbackOffers,omitempty"`
}

// ProfileConfig overrides the default expense constants of one mode.
type ProfileConfig struct {
	TitleTransferRate      string `yaml:"titleTransferRate,omitempty"`
	LoanAllocationFee      string `yaml:"loanAllocationFee,omitempty"`
	AppraisalFee           string `yaml:"appraisalFee,omitempty"`
	LienRegistrationFee    string `yaml:"lienRegistrationFee,omitempty"`
	HazardInsurancePremium string `yaml:"hazardInsurancePremium,omitempty"`
	RevolvingFundFee       string `yaml:"revolvingFundFee,omitempty"`
	VehicleTermMonths      int    `yaml:"vehicleTermMonths,omitempty"`
}

// FallbackOfferConfig is a static offer served when the quote provider is
// unavailable. Installment and total may be left empty to be derived from
// the rate.
type FallbackOfferConfig struct {
	LenderCode  string `yaml:"lenderCode"`
	Rate        string `yaml:"rate"`
	Installment string `yaml:"installment,omitempty"`
	Total       string `yaml:"total,omitempty"`
}

// QuotesConfig configures the credit quote provider.
type QuotesConfig struct {
	BaseURL   string        `yaml:"baseURL,omitempty"`
	APIKey    string        `yaml:"apiKey,omitempty"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"userAgent,omitempty"`
}

// PostgresConfig configures the plan repository. An empty DSN selects the
// in-memory repository.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn,omitempty"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	MigrationsPath  string        `yaml:"migrationsPath,omitempty"`
	AutoMigrate     bool          `yaml:"autoMigrate,omitempty"`
}

// RedisConfig configures the draft store. An empty address selects the
// in-memory draft store.
type RedisConfig struct {
	Address   string        `yaml:"address,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	DB        int           `yaml:"db"`
	DraftTTL  time.Duration `yaml:"draftTTL"`
	KeyPrefix string        `yaml:"keyPrefix"`
}

// SMTPConfig configures plan summary e-mails.
type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	From     string `yaml:"from,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", fmt.Sprintf("%d", constants.DefaultMaxBodySizeBytes))
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.shutdownTimeout", 10*time.Second)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("auth.devOwner", "local-dev")

	v.SetDefault("quotes.baseURL", "")
	v.SetDefault("quotes.apiKey", "")
	v.SetDefault("quotes.timeout", time.Duration(constants.DefaultQuoteTimeoutSeconds)*time.Second)
	v.SetDefault("quotes.userAgent", "payment-planner")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxOpenConns", 10)
	v.SetDefault("postgres.maxIdleConns", 5)
	v.SetDefault("postgres.connMaxLifetime", 30*time.Minute)
	v.SetDefault("postgres.migrationsPath", "file://migrations")
	v.SetDefault("postgres.autoMigrate", false)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.draftTTL", time.Duration(constants.DefaultDraftTTLHours)*time.Hour)
	v.SetDefault("redis.keyPrefix", constants.DefaultDraftKeyPrefix)

	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r. It is used by
// tests and by callers that embed the configuration.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	configuration, err := decode(newViper())
	if err != nil {
		// Defaults are static and always decode.
		panic(err)
	}
	return configuration
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}
