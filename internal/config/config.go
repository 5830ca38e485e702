package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DefaultBranchCodes are the branches of the bank included in every report.
const DefaultBranchCodes = "001,091,101,102,103,104,105,106,110,116,195,200,301,331,999"

type Config struct {
	ServerAddress string `validate:"required"`
	Environment   string
	LogFormat     string `validate:"oneof=text json"`
	Input         InputConfig
	Report        ReportConfig
	// ExpiresOn disables report generation from this date on. Zero means no expiry.
	ExpiresOn time.Time
}

type InputConfig struct {
	LedgerDir        string `validate:"required"`
	BODir            string `validate:"required"`
	ExchangeRateFile string `validate:"required"`
}

type ReportConfig struct {
	OutputDir   string          `validate:"required"`
	BranchCodes []string        `validate:"min=1,dive,len=3,numeric"`
	Tolerance   decimal.Decimal `validate:"-"`
	Workers     int             `validate:"min=1,max=8"`
}

// LoadConfig reads an optional .env file and the environment.
func LoadConfig() (*Config, error) {
	return Load(".env")
}

// Load reads configuration from the given env-style file, if present, with
// environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LEDGER_DIR", "BAL_SHEET")
	v.SetDefault("BO_DIR", "RAW_BO")
	v.SetDefault("EXCHANGE_RATE_FILE", "RAW_BO/Ex-Rate.xlsx")
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("BRANCH_CODES", DefaultBranchCodes)
	v.SetDefault("RECONCILE_TOLERANCE", "1")
	v.SetDefault("WORKERS", 2)
	v.SetDefault("EXPIRES_ON", "")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tolerance, err := decimal.NewFromString(v.GetString("RECONCILE_TOLERANCE"))
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_TOLERANCE: %w", err)
	}
	if !tolerance.IsPositive() {
		return nil, fmt.Errorf("RECONCILE_TOLERANCE must be positive, got %s", tolerance)
	}

	config := &Config{
		ServerAddress: v.GetString("SERVER_ADDRESS"),
		Environment:   v.GetString("ENVIRONMENT"),
		LogFormat:     strings.ToLower(v.GetString("LOG_FORMAT")),
		Input: InputConfig{
			LedgerDir:        v.GetString("LEDGER_DIR"),
			BODir:            v.GetString("BO_DIR"),
			ExchangeRateFile: v.GetString("EXCHANGE_RATE_FILE"),
		},
		Report: ReportConfig{
			OutputDir:   v.GetString("OUTPUT_DIR"),
			BranchCodes: SplitCodes(v.GetString("BRANCH_CODES")),
			Tolerance:   tolerance,
			Workers:     v.GetInt("WORKERS"),
		},
	}

	if raw := strings.TrimSpace(v.GetString("EXPIRES_ON")); raw != "" {
		expires, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("invalid EXPIRES_ON, use YYYY-MM-DD: %w", err)
		}
		config.ExpiresOn = expires
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Expired reports whether report generation is no longer allowed at now.
func (c *Config) Expired(now time.Time) bool {
	return !c.ExpiresOn.IsZero() && !now.Before(c.ExpiresOn)
}

// SplitCodes parses a comma separated list of codes, ignoring blanks and spaces.
func SplitCodes(raw string) []string {
	var codes []string
	for _, code := range strings.Split(strings.ReplaceAll(raw, " ", ""), ",") {
		if code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
