package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Data.TradesPath() != filepath.Join("data/ETH_USD", "trades.csv") {
		t.Errorf("TradesPath = %q", cfg.Data.TradesPath())
	}
	if cfg.Model.RiskAversionGamma != DefaultRiskAversionGamma {
		t.Errorf("RiskAversionGamma = %v, want %v", cfg.Model.RiskAversionGamma, DefaultRiskAversionGamma)
	}
	if cfg.Model.GammaMode != GammaInventoryScaled {
		t.Errorf("GammaMode = %q, want %q", cfg.Model.GammaMode, GammaInventoryScaled)
	}
	if cfg.Grid.Workers != DefaultGridWorkers {
		t.Errorf("Grid.Workers = %d, want %d", cfg.Grid.Workers, DefaultGridWorkers)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadAndValidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
data:
  dir: ${SPREAD_TEST_DIR}
model:
  risk_aversion_gamma: 1.5
  gamma_mode: constant
backtest:
  initial_capital: 25000
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPREAD_TEST_DIR", "data/BTC_USD")

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate() error = %v", err)
	}

	if cfg.Data.Dir != "data/BTC_USD" {
		t.Errorf("Data.Dir = %q, want env-expanded data/BTC_USD", cfg.Data.Dir)
	}
	if cfg.Model.RiskAversionGamma != 1.5 {
		t.Errorf("RiskAversionGamma = %v, want 1.5", cfg.Model.RiskAversionGamma)
	}
	if cfg.Model.GammaMode != GammaConstant {
		t.Errorf("GammaMode = %q, want constant", cfg.Model.GammaMode)
	}
	if cfg.Backtest.InitialCapital != 25000 {
		t.Errorf("InitialCapital = %v, want 25000", cfg.Backtest.InitialCapital)
	}
	// Unset fields fall back to defaults.
	if cfg.Model.CalibrationWindowSeconds != DefaultCalibrationWindowSeconds {
		t.Errorf("CalibrationWindowSeconds = %d, want default", cfg.Model.CalibrationWindowSeconds)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate_Errors(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad gamma mode",
			mutate:  func(c *Config) { c.Model.GammaMode = "aggressive" },
			wantSub: "gamma_mode",
		},
		{
			name:    "gamma bounds inverted",
			mutate:  func(c *Config) { c.Model.GammaMin = 3; c.Model.GammaMax = 1 },
			wantSub: "gamma_min",
		},
		{
			name:    "negative tick size",
			mutate:  func(c *Config) { c.Model.TickSize = -0.01 },
			wantSub: "tick_size",
		},
		{
			name:    "zero workers",
			mutate:  func(c *Config) { c.Grid.Workers = -1 },
			wantSub: "grid.workers",
		},
		{
			name:    "non-positive horizon",
			mutate:  func(c *Config) { c.Grid.HorizonsSeconds = []int64{0} },
			wantSub: "horizons_seconds",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Errorf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}
