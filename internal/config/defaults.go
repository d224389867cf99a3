package config

// Default values for optional configuration fields.
const (
	DefaultDataDir                      = "data/ETH_USD"
	DefaultTradesFile                   = "trades.csv"
	DefaultOrderbookFile                = "orderbook_depth.csv"
	DefaultRiskAversionGamma            = 0.5
	DefaultEffectiveVolumeThreshold     = 1000.0
	DefaultCalibrationWindowSeconds     = 3600
	DefaultRecalibrationIntervalSeconds = 60
	DefaultInventoryHorizonSeconds      = 60
	DefaultGammaMin                     = 0.1
	DefaultGammaMax                     = 5.0
	DefaultMaxInventory                 = 10.0
	DefaultTickSize                     = 0.01
	DefaultMaxShiftTicks                = 100.0
	DefaultGammaMode                    = GammaInventoryScaled
	DefaultMinSpreadBps                 = 2.0
	DefaultMaxSpreadBps                 = 100.0
	DefaultMakerFeeBps                  = 1.0
	DefaultTakerFeeBps                  = 5.0
	DefaultMaxVolatility                = 0.02
	DefaultQuoteValiditySeconds         = 60
	DefaultGapThresholdSeconds          = 1800
	DefaultWarmupPeriodSeconds          = 900
	DefaultInitialCapital               = 10000.0
	DefaultOrderNotional                = 500.0
	DefaultGridWorkers                  = 4
)

// Default returns the built-in configuration used when no config file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	// Data defaults
	if c.Data.Dir == "" {
		c.Data.Dir = DefaultDataDir
	}
	if c.Data.TradesFile == "" {
		c.Data.TradesFile = DefaultTradesFile
	}
	if c.Data.OrderbookFile == "" {
		c.Data.OrderbookFile = DefaultOrderbookFile
	}

	// Model defaults
	m := &c.Model
	if m.RiskAversionGamma == 0 {
		m.RiskAversionGamma = DefaultRiskAversionGamma
	}
	if m.EffectiveVolumeThreshold == 0 {
		m.EffectiveVolumeThreshold = DefaultEffectiveVolumeThreshold
	}
	if m.CalibrationWindowSeconds == 0 {
		m.CalibrationWindowSeconds = DefaultCalibrationWindowSeconds
	}
	if m.RecalibrationIntervalSeconds == 0 {
		m.RecalibrationIntervalSeconds = DefaultRecalibrationIntervalSeconds
	}
	if m.InventoryHorizonSeconds == 0 {
		m.InventoryHorizonSeconds = DefaultInventoryHorizonSeconds
	}
	if m.GammaMin == 0 {
		m.GammaMin = DefaultGammaMin
	}
	if m.GammaMax == 0 {
		m.GammaMax = DefaultGammaMax
	}
	if m.MaxInventory == 0 {
		m.MaxInventory = DefaultMaxInventory
	}
	if m.TickSize == 0 {
		m.TickSize = DefaultTickSize
	}
	if m.MaxShiftTicks == 0 {
		m.MaxShiftTicks = DefaultMaxShiftTicks
	}
	if m.GammaMode == "" {
		m.GammaMode = DefaultGammaMode
	}
	if m.MinSpreadBps == 0 {
		m.MinSpreadBps = DefaultMinSpreadBps
	}
	if m.MaxSpreadBps == 0 {
		m.MaxSpreadBps = DefaultMaxSpreadBps
	}
	if m.MakerFeeBps == 0 {
		m.MakerFeeBps = DefaultMakerFeeBps
	}
	if m.TakerFeeBps == 0 {
		m.TakerFeeBps = DefaultTakerFeeBps
	}
	if m.MaxVolatility == 0 {
		m.MaxVolatility = DefaultMaxVolatility
	}
	if m.QuoteValiditySeconds == 0 {
		m.QuoteValiditySeconds = DefaultQuoteValiditySeconds
	}
	if m.GapThresholdSeconds == 0 {
		m.GapThresholdSeconds = DefaultGapThresholdSeconds
	}
	if m.WarmupPeriodSeconds == 0 {
		m.WarmupPeriodSeconds = DefaultWarmupPeriodSeconds
	}

	// Backtest defaults
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = DefaultInitialCapital
	}
	if c.Backtest.OrderNotional == 0 {
		c.Backtest.OrderNotional = DefaultOrderNotional
	}

	// Grid defaults
	if len(c.Grid.HorizonsSeconds) == 0 {
		c.Grid.HorizonsSeconds = []int64{30, 60, 120, 300}
	}
	if len(c.Grid.Gammas) == 0 {
		c.Grid.Gammas = []float64{0.1, 0.5, 1.0, 2.0}
	}
	if c.Grid.Workers == 0 {
		c.Grid.Workers = DefaultGridWorkers
	}
}
