package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return errors.New("data.dir is required")
	}
	if c.Data.TradesFile == "" {
		return errors.New("data.trades_file is required")
	}
	if c.Data.OrderbookFile == "" {
		return errors.New("data.orderbook_file is required")
	}

	if err := c.Model.validate(); err != nil {
		return err
	}

	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("backtest.initial_capital must be positive, got %v", c.Backtest.InitialCapital)
	}
	if c.Backtest.OrderNotional <= 0 {
		return fmt.Errorf("backtest.order_notional must be positive, got %v", c.Backtest.OrderNotional)
	}

	if c.Grid.Workers < 1 {
		return fmt.Errorf("grid.workers must be at least 1, got %d", c.Grid.Workers)
	}
	for _, h := range c.Grid.HorizonsSeconds {
		if h <= 0 {
			return fmt.Errorf("grid.horizons_seconds must be positive, got %d", h)
		}
	}
	for _, g := range c.Grid.Gammas {
		if g <= 0 {
			return fmt.Errorf("grid.gammas must be positive, got %v", g)
		}
	}

	return nil
}

func (m *ModelConfig) validate() error {
	if m.CalibrationWindowSeconds <= 0 {
		return fmt.Errorf("model.calibration_window_seconds must be positive, got %d", m.CalibrationWindowSeconds)
	}
	if m.RecalibrationIntervalSeconds <= 0 {
		return fmt.Errorf("model.recalibration_interval_seconds must be positive, got %d", m.RecalibrationIntervalSeconds)
	}
	if m.InventoryHorizonSeconds <= 0 {
		return fmt.Errorf("model.inventory_horizon_seconds must be positive, got %d", m.InventoryHorizonSeconds)
	}
	if m.EffectiveVolumeThreshold <= 0 {
		return fmt.Errorf("model.effective_volume_threshold must be positive, got %v", m.EffectiveVolumeThreshold)
	}
	if m.MaxInventory <= 0 {
		return fmt.Errorf("model.max_inventory must be positive, got %v", m.MaxInventory)
	}
	if m.TickSize < 0 {
		return fmt.Errorf("model.tick_size must not be negative, got %v", m.TickSize)
	}
	if m.GammaMin > m.GammaMax {
		return fmt.Errorf("model.gamma_min (%v) must not exceed model.gamma_max (%v)", m.GammaMin, m.GammaMax)
	}

	switch m.GammaMode {
	case GammaConstant, GammaInventoryScaled, GammaMaxShift:
	default:
		return fmt.Errorf("model.gamma_mode must be one of constant, inventory_scaled, max_shift; got %q", m.GammaMode)
	}

	return nil
}
