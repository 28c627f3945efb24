package battery

import (
	"fmt"
	"math"
)

const (
	optimalTemperature = 25.0
	// Lithium-ion packs typically reach ~80% of rated capacity after
	// 3000 equivalent full cycles.
	cycleLossFraction = 0.2
	cycleLossHorizon  = 3000.0
)

// Config holds the user-configurable battery parameters.
type Config struct {
	CapacityKWh     float64 `json:"capacity_kwh"`
	InitialSoCKWh   float64 `json:"initial_soc_kwh"`
	MaxChargeKW     float64 `json:"max_charge_kw"`
	MaxDischargeKW  float64 `json:"max_discharge_kw"`
	Efficiency      float64 `json:"efficiency"`
	DegradationRate float64 `json:"degradation_rate"`
	TemperatureC    float64 `json:"temperature_c"`
}

// SetDefaults applies the reference configuration (a 13.5 kWh / 5 kW
// residential pack) for fields left at their zero value.
func (c *Config) SetDefaults() {
	if c.CapacityKWh == 0 {
		c.CapacityKWh = 13.5
	}
	if c.MaxChargeKW == 0 {
		c.MaxChargeKW = 5.0
	}
	if c.MaxDischargeKW == 0 {
		c.MaxDischargeKW = 5.0
	}
	if c.Efficiency == 0 {
		c.Efficiency = 0.95
	}
	if c.DegradationRate == 0 {
		c.DegradationRate = 0.00005
	}
	if c.TemperatureC == 0 {
		c.TemperatureC = optimalTemperature
	}
}

// Validate checks that the configuration describes a physically sound pack.
func (c Config) Validate() error {
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("capacity_kwh must be positive, got %v", c.CapacityKWh)
	}
	if c.InitialSoCKWh < 0 {
		return fmt.Errorf("initial_soc_kwh must be non-negative, got %v", c.InitialSoCKWh)
	}
	if c.InitialSoCKWh > c.CapacityKWh {
		return fmt.Errorf("initial_soc_kwh %v exceeds capacity %v", c.InitialSoCKWh, c.CapacityKWh)
	}
	if c.MaxChargeKW < 0 || c.MaxDischargeKW < 0 {
		return fmt.Errorf("power ratings must be non-negative")
	}
	if c.Efficiency <= 0 || c.Efficiency > 1 {
		return fmt.Errorf("efficiency must be in (0,1], got %v", c.Efficiency)
	}
	if c.DegradationRate < 0 {
		return fmt.Errorf("degradation_rate must be non-negative, got %v", c.DegradationRate)
	}
	return nil
}

// Battery models a stationary storage pack with thermal efficiency effects
// and throughput plus cycle based degradation. All energy figures are kWh
// over a one hour timestep, so power limits in kW apply directly.
//
// The contract is never-fail, always-clamp: Charge and Discharge silently
// reduce any request to what is physically feasible and report the accepted
// amount. Callers cannot overdraw or overcharge the pack.
type Battery struct {
	ratedCapacity float64
	capacity      float64
	soc           float64
	maxCharge     float64
	maxDischarge  float64

	baseEfficiency float64
	efficiency     float64

	degradationRate float64
	throughput      float64
	cycles          float64
	stateOfHealth   float64

	temperature float64

	peakPower       float64
	chargeEvents    int
	dischargeEvents int
}

// New constructs a battery from cfg. An invalid configuration is the only
// way to fail; defaults are applied by the config loader, not here, so an
// explicit zero (for instance a zero degradation rate) is honoured.
func New(cfg Config) (*Battery, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("battery config: %w", err)
	}
	b := &Battery{
		ratedCapacity:   cfg.CapacityKWh,
		capacity:        cfg.CapacityKWh,
		soc:             cfg.InitialSoCKWh,
		maxCharge:       cfg.MaxChargeKW,
		maxDischarge:    cfg.MaxDischargeKW,
		baseEfficiency:  cfg.Efficiency,
		degradationRate: cfg.DegradationRate,
		stateOfHealth:   100,
		temperature:     cfg.TemperatureC,
	}
	b.updateEfficiency()
	return b, nil
}

// Charge requests requested kWh into the pack and returns the accepted
// amount after clamping to the 1C rate, the power rating and the remaining
// headroom. Stored energy grows by accepted×efficiency: conversion losses
// are absorbed entirely on the input side.
//
// The charge event counter increments on every positive request, even when
// a full pack accepts nothing. KPI consumers read it as "charge attempts".
func (b *Battery) Charge(requested float64) float64 {
	if requested > 0 {
		b.chargeEvents++
	}

	headroom := b.capacity - b.soc
	safeRate := math.Min(b.maxCharge, b.cRateLimit())
	accepted := math.Min(math.Min(requested, safeRate), headroom)
	if accepted < 0 {
		accepted = 0
	}

	if accepted > b.peakPower {
		b.peakPower = accepted
	}

	b.soc += accepted * b.efficiency
	b.updateDegradation(accepted)
	// Clamp after the capacity update so floating-point overshoot cannot
	// leave the pack above its (now slightly smaller) usable capacity.
	b.soc = math.Min(b.soc, b.capacity)

	return accepted
}

// Discharge requests requested kWh out of the pack and returns the supplied
// amount after clamping to the 1C rate, the power rating and the stored
// energy. Stored energy drops by exactly the supplied amount: losses were
// already paid on the charge side.
func (b *Battery) Discharge(requested float64) float64 {
	if requested > 0 {
		b.dischargeEvents++
	}

	safeRate := math.Min(b.maxDischarge, b.cRateLimit())
	supplied := math.Min(math.Min(requested, safeRate), b.soc)
	if supplied < 0 {
		supplied = 0
	}

	if supplied > b.peakPower {
		b.peakPower = supplied
	}

	b.soc -= supplied
	b.updateDegradation(supplied)

	return supplied
}

// cRateLimit caps hourly energy at 1C of the current, degraded capacity.
func (b *Battery) cRateLimit() float64 {
	return b.capacity
}

// updateDegradation accrues wear for processed kWh and refreshes capacity,
// state of health and effective efficiency. Two additive loss terms: one
// proportional to lifetime throughput, one proportional to equivalent full
// cycles.
func (b *Battery) updateDegradation(processed float64) {
	b.throughput += processed
	b.cycles = b.throughput / (2 * b.ratedCapacity)

	throughputLoss := b.throughput * b.degradationRate
	cycleLoss := b.cycles * (cycleLossFraction / cycleLossHorizon) * b.ratedCapacity

	b.capacity = math.Max(0, b.ratedCapacity-throughputLoss-cycleLoss)
	b.stateOfHealth = b.capacity / b.ratedCapacity * 100
	b.updateEfficiency()
}

// updateEfficiency derives the effective efficiency from the base value,
// the operating temperature and the state of health.
func (b *Battery) updateEfficiency() {
	b.efficiency = b.baseEfficiency * b.temperatureFactor() * (b.stateOfHealth / 100)
}

// temperatureFactor penalises operation away from 25°C in coarse steps.
func (b *Battery) temperatureFactor() float64 {
	diff := math.Abs(b.temperature - optimalTemperature)
	switch {
	case diff < 10:
		return 1.0
	case diff < 20:
		return 0.98
	case diff < 30:
		return 0.95
	default:
		return 0.90
	}
}

// SetTemperature updates the operating temperature and recomputes the
// effective efficiency. Temperature affects efficiency only, never wear.
func (b *Battery) SetTemperature(celsius float64) {
	b.temperature = celsius
	b.updateEfficiency()
}

// RatedCapacity returns the nameplate capacity in kWh.
func (b *Battery) RatedCapacity() float64 { return b.ratedCapacity }

// Capacity returns the current usable capacity in kWh.
func (b *Battery) Capacity() float64 { return b.capacity }

// SoC returns the stored energy in kWh.
func (b *Battery) SoC() float64 { return b.soc }

// MaxCharge returns the charge power rating in kW.
func (b *Battery) MaxCharge() float64 { return b.maxCharge }

// MaxDischarge returns the discharge power rating in kW.
func (b *Battery) MaxDischarge() float64 { return b.maxDischarge }

// Efficiency returns the current effective charge efficiency.
func (b *Battery) Efficiency() float64 { return b.efficiency }

// Metrics is a read-only snapshot of the battery state.
type Metrics struct {
	CapacityKWh     float64 `json:"capacity_kwh"`
	SoCKWh          float64 `json:"soc_kwh"`
	SoCPercent      float64 `json:"soc_percent"`
	StateOfHealth   float64 `json:"state_of_health"`
	Cycles          float64 `json:"cycles"`
	ThroughputKWh   float64 `json:"throughput_kwh"`
	ChargeEvents    int     `json:"charge_events"`
	DischargeEvents int     `json:"discharge_events"`
	PeakPowerKW     float64 `json:"peak_power_kw"`
	Efficiency      float64 `json:"efficiency"`
	TemperatureC    float64 `json:"temperature_c"`
	DegradationKWh  float64 `json:"degradation_kwh"`
}

// Metrics returns the current snapshot. It has no side effects.
func (b *Battery) Metrics() Metrics {
	socPct := 0.0
	if b.capacity > 0 {
		socPct = b.soc / b.capacity * 100
	}
	return Metrics{
		CapacityKWh:     b.capacity,
		SoCKWh:          b.soc,
		SoCPercent:      socPct,
		StateOfHealth:   b.stateOfHealth,
		Cycles:          b.cycles,
		ThroughputKWh:   b.throughput,
		ChargeEvents:    b.chargeEvents,
		DischargeEvents: b.dischargeEvents,
		PeakPowerKW:     b.peakPower,
		Efficiency:      b.efficiency,
		TemperatureC:    b.temperature,
		DegradationKWh:  b.ratedCapacity - b.capacity,
	}
}
