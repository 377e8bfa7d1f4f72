package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"grid-planner-go/strategy"
)

// AppConfig holds the planner's runtime configuration.
type AppConfig struct {
	Env       string                  `yaml:"env"`
	Gateway   GatewayConfig           `yaml:"gateway"`
	Estimator EstimatorConfig         `yaml:"estimator"`
	Logging   LoggingConfig           `yaml:"logging"`
	Symbols   map[string]SymbolConfig `yaml:"symbols"`
}

type GatewayConfig struct {
	BaseURL   string  `yaml:"baseURL"`
	RestRate  float64 `yaml:"restRate"`  // token bucket: requests per second
	RestBurst int     `yaml:"restBurst"` // token bucket: burst size
}

type EstimatorConfig struct {
	Interval string `yaml:"interval"` // bar interval for the ATR window
	Period   int    `yaml:"period"`   // ATR lookback in bars
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// SymbolConfig carries per-symbol planning defaults the CLI falls back to
// when no explicit flags are given.
type SymbolConfig struct {
	Principal      float64 `yaml:"principal"`
	LowerBound     float64 `yaml:"lowerBound"`
	UpperBound     float64 `yaml:"upperBound"`
	GridCount      int     `yaml:"gridCount"`
	Leverage       float64 `yaml:"leverage"`
	FeeRatePercent float64 `yaml:"feeRatePercent"`
	DurationDays   int     `yaml:"durationDays"`
	GridShape      string  `yaml:"gridShape"`
	Direction      string  `yaml:"direction"`
}

// Load reads YAML config from path, applies defaults and validates.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides deployment-specific
// fields from env vars if present.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	if v := os.Getenv("GP_GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	return cfg, Validate(cfg)
}

func (c *AppConfig) applyDefaults() {
	if c.Estimator.Interval == "" {
		c.Estimator.Interval = "1d"
	}
	if c.Estimator.Period == 0 {
		c.Estimator.Period = strategy.DefaultVolatilityPeriod
	}
	if c.Gateway.RestRate == 0 {
		c.Gateway.RestRate = 5
	}
	if c.Gateway.RestBurst == 0 {
		c.Gateway.RestBurst = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate ensures required fields are present and symbol defaults are
// internally consistent.
func Validate(cfg AppConfig) error {
	if cfg.Env == "" {
		return errors.New("env is required")
	}
	if cfg.Gateway.BaseURL == "" {
		return errors.New("gateway.baseURL is required (or GP_GATEWAY_BASE_URL)")
	}
	if cfg.Estimator.Period <= 0 {
		return errors.New("estimator.period must be > 0")
	}
	for sym, sc := range cfg.Symbols {
		if sc.Principal <= 0 {
			return fmt.Errorf("symbol %s principal must be > 0", sym)
		}
		// zero gridCount and zero bounds both mean "ask the optimizer"
		if sc.GridCount < 0 {
			return fmt.Errorf("symbol %s gridCount must be >= 0", sym)
		}
		if sc.Leverage < 1 {
			return fmt.Errorf("symbol %s leverage must be >= 1", sym)
		}
		if sc.FeeRatePercent < 0 {
			return fmt.Errorf("symbol %s feeRatePercent must be >= 0", sym)
		}
		if sc.DurationDays <= 0 {
			return fmt.Errorf("symbol %s durationDays must be > 0", sym)
		}
		if sc.UpperBound != 0 || sc.LowerBound != 0 {
			if sc.UpperBound <= sc.LowerBound {
				return fmt.Errorf("symbol %s upperBound must be > lowerBound", sym)
			}
		}
		if _, err := strategy.ParseGridShape(sc.GridShape); err != nil {
			return fmt.Errorf("symbol %s: %w", sym, err)
		}
		if _, err := strategy.ParsePositionDirection(sc.Direction); err != nil {
			return fmt.Errorf("symbol %s: %w", sym, err)
		}
	}
	return nil
}
