// Package config loads the simulator configuration from YAML or JSON
// files with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/infra/metrics"
)

// Config is the root configuration of the simulator.
type Config struct {
	Battery    battery.Config   `json:"battery"`
	Simulation SimulationConfig `json:"simulation"`
	Profile    ProfileConfig    `json:"profile"`
	Pricing    PricingConfig    `json:"pricing"`
	Metrics    metrics.Config   `json:"metrics"`
	Output     OutputConfig     `json:"output"`
}

// SimulationConfig selects the strategy and horizon of a run.
type SimulationConfig struct {
	Strategy            string  `json:"strategy"`
	Days                int     `json:"days"`
	SellPrice           float64 `json:"sell_price"`
	BalanceToleranceKWh float64 `json:"balance_tolerance_kwh"`
	PeakThresholdKW     float64 `json:"peak_threshold_kw"`
	HighPrice           float64 `json:"high_price"`
	LowPrice            float64 `json:"low_price"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.Strategy == "" {
		c.Strategy = "self_consumption"
	}
	if c.Days == 0 {
		c.Days = 1
	}
	if c.SellPrice == 0 {
		c.SellPrice = 3.0
	}
	if c.BalanceToleranceKWh == 0 {
		c.BalanceToleranceKWh = 0.01
	}
}

// Validate checks mandatory fields.
func (c SimulationConfig) Validate() error {
	if c.Days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", c.Days)
	}
	if c.SellPrice < 0 {
		return fmt.Errorf("sell_price must be non-negative, got %v", c.SellPrice)
	}
	return nil
}

// ProfileConfig parameterises the synthetic solar and load profiles.
type ProfileConfig struct {
	Type        string  `json:"type"`
	Weather     string  `json:"weather"`
	Noise       float64 `json:"noise"`
	SolarPeakKW float64 `json:"solar_peak_kw"`
	Seed        uint64  `json:"seed"`
}

// SetDefaults applies sane defaults.
func (c *ProfileConfig) SetDefaults() {
	if c.Type == "" {
		c.Type = "residential"
	}
	if c.Weather == "" {
		c.Weather = "sunny"
	}
	if c.SolarPeakKW == 0 {
		c.SolarPeakKW = 5.0
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate checks mandatory fields.
func (c ProfileConfig) Validate() error {
	switch c.Type {
	case "residential", "commercial", "industrial":
	default:
		return fmt.Errorf("unknown profile type %q", c.Type)
	}
	if c.Noise < 0 || c.Noise > 1 {
		return fmt.Errorf("noise must be in [0,1], got %v", c.Noise)
	}
	return nil
}

// PricingConfig selects the tariff model.
type PricingConfig struct {
	Model      string  `json:"model"`
	FlatRate   float64 `json:"flat_rate"`
	BasePrice  float64 `json:"base_price"`
	Volatility float64 `json:"volatility"`
}

// SetDefaults applies sane defaults.
func (c *PricingConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = "tou"
	}
}

// Validate checks mandatory fields.
func (c PricingConfig) Validate() error {
	switch c.Model {
	case "tou", "flat", "dynamic":
		return nil
	default:
		return fmt.Errorf("unknown pricing model %q", c.Model)
	}
}

// OutputConfig locates exported results.
type OutputConfig struct {
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
}

// Load reads the configuration at path, applying `K_` prefixed environment
// overrides, then defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Battery.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Profile.SetDefaults()
	cfg.Pricing.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Battery.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Profile.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
