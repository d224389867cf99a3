package config

import "path/filepath"

// Config is the top-level configuration for the analysis binaries.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Model    ModelConfig    `yaml:"model"`
	Backtest BacktestConfig `yaml:"backtest"`
	Grid     GridConfig     `yaml:"grid"`
}

// DataConfig locates the static CSV exports.
type DataConfig struct {
	Dir           string `yaml:"dir"`
	TradesFile    string `yaml:"trades_file"`
	OrderbookFile string `yaml:"orderbook_file"`
}

// TradesPath returns the full path of the trades CSV.
func (d DataConfig) TradesPath() string {
	return filepath.Join(d.Dir, d.TradesFile)
}

// OrderbookPath returns the full path of the orderbook depth CSV.
func (d DataConfig) OrderbookPath() string {
	return filepath.Join(d.Dir, d.OrderbookFile)
}

// GammaMode selects how the effective risk aversion is derived.
type GammaMode string

const (
	// GammaConstant uses risk_aversion_gamma directly.
	GammaConstant GammaMode = "constant"
	// GammaInventoryScaled scales the max-shift gamma by the inventory ratio.
	GammaInventoryScaled GammaMode = "inventory_scaled"
	// GammaMaxShift derives gamma from the maximum tolerated reservation shift.
	GammaMaxShift GammaMode = "max_shift"
)

// ModelConfig holds the Avellaneda-Stoikov model and calibration parameters.
type ModelConfig struct {
	RiskAversionGamma            float64   `yaml:"risk_aversion_gamma"`
	EffectiveVolumeThreshold     float64   `yaml:"effective_volume_threshold"`
	CalibrationWindowSeconds     int64     `yaml:"calibration_window_seconds"`
	RecalibrationIntervalSeconds int64     `yaml:"recalibration_interval_seconds"`
	InventoryHorizonSeconds      int64     `yaml:"inventory_horizon_seconds"`
	GammaMin                     float64   `yaml:"gamma_min"`
	GammaMax                     float64   `yaml:"gamma_max"`
	MaxInventory                 float64   `yaml:"max_inventory"`
	TickSize                     float64   `yaml:"tick_size"`
	MaxShiftTicks                float64   `yaml:"max_shift_ticks"`
	GammaMode                    GammaMode `yaml:"gamma_mode"`
	MinSpreadBps                 float64   `yaml:"min_spread_bps"`
	MaxSpreadBps                 float64   `yaml:"max_spread_bps"`
	MakerFeeBps                  float64   `yaml:"maker_fee_bps"`
	TakerFeeBps                  float64   `yaml:"taker_fee_bps"`
	MinVolatility                float64   `yaml:"min_volatility"`
	MaxVolatility                float64   `yaml:"max_volatility"`
	FillCooldownSeconds          int64     `yaml:"fill_cooldown_seconds"`
	QuoteValiditySeconds         int64     `yaml:"quote_validity_seconds"`
	GapThresholdSeconds          int64     `yaml:"gap_threshold_seconds"`
	WarmupPeriodSeconds          int64     `yaml:"warmup_period_seconds"`
}

// BacktestConfig holds simulation parameters.
type BacktestConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	OrderNotional  float64 `yaml:"order_notional"`
	OutputCSV      string  `yaml:"output_csv"`
	Verbose        bool    `yaml:"verbose"`
}

// GridConfig holds the parameter sweep for the grid search binary.
type GridConfig struct {
	HorizonsSeconds []int64   `yaml:"horizons_seconds"`
	Gammas          []float64 `yaml:"gammas"`
	Workers         int       `yaml:"workers"`
}
