package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	Forecast   ForecastConfig   `mapstructure:"forecast"`
	Processing ProcessingConfig `mapstructure:"processing"`
	Chart      ChartConfig      `mapstructure:"chart"`
	Export     ExportConfig     `mapstructure:"export"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ForecastConfig controls the seasonal decomposition model
type ForecastConfig struct {
	SeasonalityMode       string  `mapstructure:"seasonality_mode"`        // additive or multiplicative
	DailySeasonality      bool    `mapstructure:"daily_seasonality"`       // daily Fourier component on/off
	WeeklySeasonality     bool    `mapstructure:"weekly_seasonality"`      // weekly Fourier component on/off
	YearlySeasonality     bool    `mapstructure:"yearly_seasonality"`      // yearly Fourier component on/off
	ChangepointPriorScale float64 `mapstructure:"changepoint_prior_scale"` // flexibility of trend changes
	SeasonalityPriorScale float64 `mapstructure:"seasonality_prior_scale"` // flexibility of seasonality
	NChangepoints         int     `mapstructure:"n_changepoints"`          // number of potential changepoints
	ChangepointRange      float64 `mapstructure:"changepoint_range"`       // proportion of history for changepoints (0-1)
	IntervalWidth         float64 `mapstructure:"interval_width"`          // width of uncertainty intervals (0-1)
}

// ProcessingConfig controls data cleaning thresholds
type ProcessingConfig struct {
	MinDataPoints          int     `mapstructure:"min_data_points"`           // minimum rows for training
	OutlierFlagMultiplier  float64 `mapstructure:"outlier_flag_multiplier"`   // IQR multiplier for flagging (default 1.5)
	OutlierCapMultiplier   float64 `mapstructure:"outlier_cap_multiplier"`    // IQR multiplier for capping (default 3.0)
	MaxMissingDateFraction float64 `mapstructure:"max_missing_date_fraction"` // above this, rows with missing dates are dropped
}

// ChartConfig controls prediction chart rendering
type ChartConfig struct {
	WidthInches  float64 `mapstructure:"width_inches"`
	HeightInches float64 `mapstructure:"height_inches"`
	DPI          int     `mapstructure:"dpi"`
}

// ExportConfig controls JSON export formatting
type ExportConfig struct {
	Indent                     int  `mapstructure:"indent"`
	IncludeConfidenceIntervals bool `mapstructure:"include_confidence_intervals"`
}

// DashboardConfig controls the dashboard HTTP service
type DashboardConfig struct {
	Host            string `mapstructure:"host"`             // bind address
	HTTPPort        int    `mapstructure:"http_port"`        // HTTP server port
	RefreshInterval int    `mapstructure:"refresh_interval"` // auto-refresh interval in seconds
	MaxFailures     int    `mapstructure:"max_failures"`     // consecutive failures before auto-refresh disables
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Processing.Validate(); err != nil {
		return fmt.Errorf("processing config: %w", err)
	}

	if err := c.Chart.Validate(); err != nil {
		return fmt.Errorf("chart config: %w", err)
	}

	if err := c.Dashboard.Validate(); err != nil {
		return fmt.Errorf("dashboard config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates forecast configuration
func (c *ForecastConfig) Validate() error {
	if c.SeasonalityMode != "additive" && c.SeasonalityMode != "multiplicative" {
		return fmt.Errorf("seasonality_mode must be 'additive' or 'multiplicative'")
	}

	if c.ChangepointRange <= 0 || c.ChangepointRange > 1 {
		return fmt.Errorf("changepoint_range must be in (0, 1]")
	}

	if c.NChangepoints < 0 {
		return fmt.Errorf("n_changepoints cannot be negative")
	}

	if c.IntervalWidth <= 0 || c.IntervalWidth >= 1 {
		return fmt.Errorf("interval_width must be in (0, 1)")
	}

	if c.ChangepointPriorScale <= 0 {
		return fmt.Errorf("changepoint_prior_scale must be positive")
	}

	if c.SeasonalityPriorScale <= 0 {
		return fmt.Errorf("seasonality_prior_scale must be positive")
	}

	return nil
}

// Validate validates processing configuration
func (c *ProcessingConfig) Validate() error {
	if c.MinDataPoints < 24 {
		return fmt.Errorf("min_data_points must be at least 24")
	}

	if c.OutlierFlagMultiplier <= 0 {
		return fmt.Errorf("outlier_flag_multiplier must be positive")
	}

	if c.OutlierCapMultiplier < c.OutlierFlagMultiplier {
		return fmt.Errorf("outlier_cap_multiplier cannot be below outlier_flag_multiplier")
	}

	if c.MaxMissingDateFraction < 0 || c.MaxMissingDateFraction > 1 {
		return fmt.Errorf("max_missing_date_fraction must be in [0, 1]")
	}

	return nil
}

// Validate validates chart configuration
func (c *ChartConfig) Validate() error {
	if c.WidthInches <= 0 || c.HeightInches <= 0 {
		return fmt.Errorf("chart dimensions must be positive")
	}

	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive")
	}

	return nil
}

// Validate validates dashboard configuration
func (c *DashboardConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.RefreshInterval < 1 {
		return fmt.Errorf("refresh_interval must be at least 1 second")
	}

	if c.MaxFailures < 1 {
		return fmt.Errorf("max_failures must be at least 1")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
