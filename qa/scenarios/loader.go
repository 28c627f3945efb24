// Package scenarios runs YAML-defined end-to-end checks against the
// simulator: a scenario fixes the battery, profiles and tariff, then
// asserts on the comparison outcome.
package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/emsim/core/battery"
)

// BatteryDef configures the pack under test.
type BatteryDef struct {
	CapacityKWh     float64 `yaml:"capacity_kwh"`
	InitialSoCKWh   float64 `yaml:"initial_soc_kwh"`
	MaxChargeKW     float64 `yaml:"max_charge_kw"`
	MaxDischargeKW  float64 `yaml:"max_discharge_kw"`
	Efficiency      float64 `yaml:"efficiency"`
	DegradationRate float64 `yaml:"degradation_rate"`
	TemperatureC    float64 `yaml:"temperature_c"`
}

// ToConfig converts the definition, applying battery defaults.
func (b BatteryDef) ToConfig() battery.Config {
	cfg := battery.Config{
		CapacityKWh:     b.CapacityKWh,
		InitialSoCKWh:   b.InitialSoCKWh,
		MaxChargeKW:     b.MaxChargeKW,
		MaxDischargeKW:  b.MaxDischargeKW,
		Efficiency:      b.Efficiency,
		DegradationRate: b.DegradationRate,
		TemperatureC:    b.TemperatureC,
	}
	cfg.SetDefaults()
	return cfg
}

// ProfileDef selects the synthetic profiles of the scenario. Explicit
// series on the scenario take precedence.
type ProfileDef struct {
	Type    string  `yaml:"type"`
	Weather string  `yaml:"weather"`
	Noise   float64 `yaml:"noise"`
	Seed    uint64  `yaml:"seed"`
}

// Expected lists the assertions of a scenario.
type Expected struct {
	Winner  string             `yaml:"winner,omitempty"`
	MaxCost map[string]float64 `yaml:"max_cost,omitempty"`
}

// Scenario is one YAML-defined check.
type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Battery     BatteryDef `yaml:"battery"`
	Profile     ProfileDef `yaml:"profile"`
	Tariff      string     `yaml:"tariff"`
	SellPrice   float64    `yaml:"sell_price"`
	Days        int        `yaml:"days"`

	// Explicit series override the generated profiles when present.
	Solar  []float64 `yaml:"solar,omitempty"`
	Load   []float64 `yaml:"load,omitempty"`
	Prices []float64 `yaml:"prices,omitempty"`

	Strategies   []string `yaml:"strategies"`
	ToleranceKWh float64  `yaml:"tolerance_kwh"`
	Expected     Expected `yaml:"expected"`
}

// Load reads a scenario from path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: name is required", path)
	}
	if len(sc.Strategies) == 0 {
		return nil, fmt.Errorf("scenario %s: strategies are required", sc.Name)
	}
	if sc.Days == 0 {
		sc.Days = 1
	}
	if sc.SellPrice == 0 {
		sc.SellPrice = 3.0
	}
	if sc.ToleranceKWh == 0 {
		sc.ToleranceKWh = 0.01
	}
	return &sc, nil
}
