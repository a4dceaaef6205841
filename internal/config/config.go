package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Lumos-Labs-HQ/farmseed/internal/principal"
	"github.com/Lumos-Labs-HQ/farmseed/internal/types"
	"github.com/spf13/viper"
)

const (
	FileName = "farmseed.config.json"

	DefaultEndpoint        = "http://127.0.0.1:4943"
	DefaultBackendCanister = "rrkah-fqaaa-aaaaa-aaaaq-cai"
	DefaultLedgerCanister  = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	DefaultLedgerURL       = "sqlite://./farmseed.db"
)

type Config struct {
	Version     string  `json:"version" mapstructure:"version"`
	Dataset     string  `json:"dataset" mapstructure:"dataset"` // optional YAML/JSON file replacing the built-in dataset
	ExportPath  string  `json:"export_path" mapstructure:"export_path"`
	MetricsFile string  `json:"metrics_file" mapstructure:"metrics_file"`
	Backend     Backend `json:"backend" mapstructure:"backend"`
	Seed        Seed    `json:"seed" mapstructure:"seed"`
	Ledger      Ledger  `json:"ledger" mapstructure:"ledger"`
	Log         Log     `json:"log" mapstructure:"log"`
}

type Backend struct {
	Endpoint       string  `json:"endpoint" mapstructure:"endpoint"`
	CanisterID     string  `json:"canister_id" mapstructure:"canister_id"`
	LedgerCanister string  `json:"ledger_canister_id" mapstructure:"ledger_canister_id"`
	TimeoutSeconds int     `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	RetryAttempts  int     `json:"retry_attempts" mapstructure:"retry_attempts"`
	CallsPerSecond float64 `json:"calls_per_second" mapstructure:"calls_per_second"` // 0 = unlimited
	APIKeyEnv      string  `json:"api_key_env" mapstructure:"api_key_env"`
}

type Seed struct {
	InvestmentAmounts []uint64 `json:"investment_amounts" mapstructure:"investment_amounts"`
	TransferAmount    uint64   `json:"transfer_amount" mapstructure:"transfer_amount"`
	TransferFee       uint64   `json:"transfer_fee" mapstructure:"transfer_fee"`
}

type Ledger struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Provider string `json:"provider" mapstructure:"provider"`
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Log struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultInvestmentAmounts are the four investments placed against every created farm.
var DefaultInvestmentAmounts = []uint64{
	5_000_000_000_000,
	2_500_000_000_000,
	1_000_000_000_000,
	7_500_000_000_000,
}

func Load() (*Config, error) {
	var cfg Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Ledger.Enabled = true
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.ExportPath == "" {
		c.ExportPath = "exports"
	}
	if c.Backend.Endpoint == "" {
		c.Backend.Endpoint = DefaultEndpoint
	}
	if c.Backend.CanisterID == "" {
		c.Backend.CanisterID = DefaultBackendCanister
	}
	if c.Backend.LedgerCanister == "" {
		c.Backend.LedgerCanister = DefaultLedgerCanister
	}
	if c.Backend.TimeoutSeconds == 0 {
		c.Backend.TimeoutSeconds = 30
	}
	if c.Backend.APIKeyEnv == "" {
		c.Backend.APIKeyEnv = "FARMSEED_API_KEY"
	}
	if len(c.Seed.InvestmentAmounts) == 0 {
		c.Seed.InvestmentAmounts = append([]uint64(nil), DefaultInvestmentAmounts...)
	}
	if c.Seed.TransferAmount == 0 {
		c.Seed.TransferAmount = 10_000 * types.E8sPerToken
	}
	if c.Seed.TransferFee == 0 && !viper.IsSet("seed.transfer_fee") {
		c.Seed.TransferFee = 10_000
	}
	if c.Ledger.Provider == "" {
		c.Ledger.Provider = "sqlite"
	}
	if c.Ledger.URLEnv == "" {
		c.Ledger.URLEnv = "FARMSEED_LEDGER_URL"
	}
	if !viper.IsSet("ledger.enabled") {
		c.Ledger.Enabled = true
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid backend endpoint %q: must be an http(s) URL", c.Backend.Endpoint)
	}
	if _, err := principal.Parse(c.Backend.CanisterID); err != nil {
		return fmt.Errorf("invalid backend canister id: %w", err)
	}
	if _, err := principal.Parse(c.Backend.LedgerCanister); err != nil {
		return fmt.Errorf("invalid ledger canister id: %w", err)
	}
	if c.Backend.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds cannot be negative")
	}
	if c.Backend.RetryAttempts < 0 {
		return fmt.Errorf("retry_attempts cannot be negative")
	}
	if c.Backend.CallsPerSecond < 0 {
		return fmt.Errorf("calls_per_second cannot be negative")
	}
	for i, amount := range c.Seed.InvestmentAmounts {
		if amount == 0 {
			return fmt.Errorf("investment_amounts[%d] must be positive", i)
		}
	}

	if c.Ledger.Enabled {
		supportedProviders := []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3"}
		supported := false
		for _, provider := range supportedProviders {
			if c.Ledger.Provider == provider {
				supported = true
				break
			}
		}
		if !supported {
			return fmt.Errorf("unsupported ledger provider: %s. Supported providers: %v", c.Ledger.Provider, supportedProviders)
		}
	}

	if c.ExportPath == "" {
		return fmt.Errorf("export_path cannot be empty")
	}

	return nil
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// GetLedgerURL reads the ledger connection string from the configured env var,
// falling back to a local sqlite file for the sqlite provider.
func (c *Config) GetLedgerURL() (string, error) {
	if dbURL := os.Getenv(c.Ledger.URLEnv); dbURL != "" {
		return dbURL, nil
	}
	if strings.HasPrefix(c.Ledger.Provider, "sqlite") {
		return DefaultLedgerURL, nil
	}
	return "", fmt.Errorf("ledger URL not found in environment variable %s", c.Ledger.URLEnv)
}

func (c *Config) APIKey() string {
	return os.Getenv(c.Backend.APIKeyEnv)
}

func (c *Config) InvestmentAmounts() []types.E8s {
	out := make([]types.E8s, len(c.Seed.InvestmentAmounts))
	for i, a := range c.Seed.InvestmentAmounts {
		out[i] = types.E8s(a)
	}
	return out
}
