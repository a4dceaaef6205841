package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
)

func loadFrom(t *testing.T, raw string) *Config {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("json")
	if raw != "" {
		if err := viper.ReadConfig(bytes.NewBufferString(raw)); err != nil {
			t.Fatalf("Failed to read config: %v", err)
		}
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := loadFrom(t, "")

	if cfg.Backend.Endpoint != DefaultEndpoint {
		t.Errorf("Expected endpoint %q, got %q", DefaultEndpoint, cfg.Backend.Endpoint)
	}
	if cfg.Backend.CanisterID != DefaultBackendCanister {
		t.Errorf("Expected canister %q, got %q", DefaultBackendCanister, cfg.Backend.CanisterID)
	}
	if cfg.Backend.RetryAttempts != 0 {
		t.Errorf("Expected no retries by default, got %d", cfg.Backend.RetryAttempts)
	}
	if len(cfg.Seed.InvestmentAmounts) != 4 {
		t.Fatalf("Expected 4 default investment amounts, got %d", len(cfg.Seed.InvestmentAmounts))
	}
	if cfg.Seed.InvestmentAmounts[3] != 7_500_000_000_000 {
		t.Errorf("Unexpected fourth investment amount %d", cfg.Seed.InvestmentAmounts[3])
	}
	if cfg.Seed.TransferFee != 10_000 {
		t.Errorf("Expected default transfer fee 10000, got %d", cfg.Seed.TransferFee)
	}
	if !cfg.Ledger.Enabled || cfg.Ledger.Provider != "sqlite" {
		t.Errorf("Expected sqlite ledger enabled by default, got %+v", cfg.Ledger)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg := loadFrom(t, `{
		"backend": {"endpoint": "https://icp0.io", "retry_attempts": 2, "calls_per_second": 4},
		"seed": {"investment_amounts": [100, 200], "transfer_fee": 0},
		"ledger": {"enabled": false}
	}`)

	if cfg.Backend.Endpoint != "https://icp0.io" {
		t.Errorf("Expected endpoint override, got %q", cfg.Backend.Endpoint)
	}
	if cfg.Backend.RetryAttempts != 2 || cfg.Backend.CallsPerSecond != 4 {
		t.Errorf("Unexpected backend tuning %+v", cfg.Backend)
	}
	if got := cfg.InvestmentAmounts(); len(got) != 2 || got[1] != 200 {
		t.Errorf("Unexpected investment amounts %v", got)
	}
	if cfg.Seed.TransferFee != 0 {
		t.Errorf("Explicit zero fee should be kept, got %d", cfg.Seed.TransferFee)
	}
	if cfg.Ledger.Enabled {
		t.Error("Expected ledger to be disabled")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"bad endpoint":     func(c *Config) { c.Backend.Endpoint = "ftp://example.com" },
		"no host":          func(c *Config) { c.Backend.Endpoint = "http://" },
		"bad canister":     func(c *Config) { c.Backend.CanisterID = "not-a-canister" },
		"bad ledger":       func(c *Config) { c.Backend.LedgerCanister = "rrkah-fqaaa-aaaaa-aaaaq-caa" },
		"negative retries": func(c *Config) { c.Backend.RetryAttempts = -1 },
		"zero investment":  func(c *Config) { c.Seed.InvestmentAmounts = []uint64{1, 0} },
		"bad provider":     func(c *Config) { c.Ledger.Provider = "oracle" },
		"empty export":     func(c *Config) { c.ExportPath = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", name)
			}
		})
	}
}

func TestGetLedgerURL(t *testing.T) {
	cfg := Default()
	cfg.Ledger.URLEnv = "FARMSEED_TEST_LEDGER_URL"

	url, err := cfg.GetLedgerURL()
	if err != nil || url != DefaultLedgerURL {
		t.Errorf("Expected sqlite fallback, got %q (%v)", url, err)
	}

	t.Setenv("FARMSEED_TEST_LEDGER_URL", "sqlite://./other.db")
	if url, _ := cfg.GetLedgerURL(); url != "sqlite://./other.db" {
		t.Errorf("Expected env override, got %q", url)
	}

	cfg.Ledger.Provider = "postgresql"
	cfg.Ledger.URLEnv = "FARMSEED_TEST_UNSET_URL"
	if _, err := cfg.GetLedgerURL(); err == nil {
		t.Error("Expected error for postgres ledger without URL")
	}
}
