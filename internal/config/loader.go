package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")               // Current directory
		v.AddConfigPath("./configs")       // Project configs directory
		v.AddConfigPath("/etc/templecast") // System-wide config
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("TEMPLECAST")
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Forecast model defaults
	v.SetDefault("forecast.seasonality_mode", "multiplicative")
	v.SetDefault("forecast.daily_seasonality", true)
	v.SetDefault("forecast.weekly_seasonality", true)
	v.SetDefault("forecast.yearly_seasonality", true)
	v.SetDefault("forecast.changepoint_prior_scale", 0.05)
	v.SetDefault("forecast.seasonality_prior_scale", 10.0)
	v.SetDefault("forecast.n_changepoints", 25)
	v.SetDefault("forecast.changepoint_range", 0.8)
	v.SetDefault("forecast.interval_width", 0.80)

	// Processing defaults
	v.SetDefault("processing.min_data_points", 30)
	v.SetDefault("processing.outlier_flag_multiplier", 1.5)
	v.SetDefault("processing.outlier_cap_multiplier", 3.0)
	v.SetDefault("processing.max_missing_date_fraction", 0.1)

	// Chart defaults
	v.SetDefault("chart.width_inches", 15.0)
	v.SetDefault("chart.height_inches", 8.0)
	v.SetDefault("chart.dpi", 300)

	// Export defaults
	v.SetDefault("export.indent", 2)
	v.SetDefault("export.include_confidence_intervals", true)

	// Dashboard defaults
	v.SetDefault("dashboard.host", "0.0.0.0")
	v.SetDefault("dashboard.http_port", 8501)
	v.SetDefault("dashboard.refresh_interval", 5)
	v.SetDefault("dashboard.max_failures", 3)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output_path", "stdout")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns default config
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Forecast: ForecastConfig{
			SeasonalityMode:       "multiplicative",
			DailySeasonality:      true,
			WeeklySeasonality:     true,
			YearlySeasonality:     true,
			ChangepointPriorScale: 0.05,
			SeasonalityPriorScale: 10.0,
			NChangepoints:         25,
			ChangepointRange:      0.8,
			IntervalWidth:         0.80,
		},
		Processing: ProcessingConfig{
			MinDataPoints:          30,
			OutlierFlagMultiplier:  1.5,
			OutlierCapMultiplier:   3.0,
			MaxMissingDateFraction: 0.1,
		},
		Chart: ChartConfig{
			WidthInches:  15.0,
			HeightInches: 8.0,
			DPI:          300,
		},
		Export: ExportConfig{
			Indent:                     2,
			IncludeConfidenceIntervals: true,
		},
		Dashboard: DashboardConfig{
			Host:            "0.0.0.0",
			HTTPPort:        8501,
			RefreshInterval: 5,
			MaxFailures:     3,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
		},
	}
}
