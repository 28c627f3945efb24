// Package kpi aggregates a completed simulation ledger into the
// performance indicators consumed by reporting.
package kpi

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/core/pricing"
	"github.com/kilianp07/emsim/core/sim"
)

// FinancialParams enables the investment analysis section of a report.
type FinancialParams struct {
	BatteryKWh        float64 `json:"battery_kwh"`
	SolarKW           float64 `json:"solar_kw"`
	BatteryCostPerKWh float64 `json:"battery_cost_per_kwh"`
	SolarCostPerKW    float64 `json:"solar_cost_per_kw"`
	BaselineRate      float64 `json:"baseline_rate"`
}

// SetDefaults applies the reference cost assumptions.
func (p *FinancialParams) SetDefaults() {
	if p.BatteryCostPerKWh == 0 {
		p.BatteryCostPerKWh = 800
	}
	if p.SolarCostPerKW == 0 {
		p.SolarCostPerKW = 40000
	}
	if p.BaselineRate == 0 {
		p.BaselineRate = 5.0
	}
}

// Report groups the indicators of one run.
type Report struct {
	Economic    Economic        `json:"economic"`
	Energy      Energy          `json:"energy"`
	Performance Performance     `json:"performance"`
	Battery     BatteryUse      `json:"battery"`
	Grid        GridInteraction `json:"grid"`
	Carbon      CarbonReport    `json:"carbon"`
	Financial   *Financial      `json:"financial,omitempty"`
}

type Economic struct {
	TotalCost     float64 `json:"total_cost"`
	GridCost      float64 `json:"grid_cost"`
	ExportRevenue float64 `json:"export_revenue"`
	NetCost       float64 `json:"net_cost"`
	CostPerKWh    float64 `json:"cost_per_kwh"`
}

type Energy struct {
	GridImportKWh       float64 `json:"grid_import_kwh"`
	GridExportKWh       float64 `json:"grid_export_kwh"`
	SolarKWh            float64 `json:"solar_kwh"`
	LoadKWh             float64 `json:"load_kwh"`
	BatteryChargeKWh    float64 `json:"battery_charge_kwh"`
	BatteryDischargeKWh float64 `json:"battery_discharge_kwh"`
}

type Performance struct {
	SelfSufficiencyPct float64 `json:"self_sufficiency_pct"`
	SelfConsumptionPct float64 `json:"self_consumption_pct"`
	LoadMatchingPct    float64 `json:"load_matching_pct"`
	GridDependencyPct  float64 `json:"grid_dependency_pct"`
	ExportRatioPct     float64 `json:"export_ratio_pct"`
	LoadFactorPct      float64 `json:"load_factor_pct"`
	PeakToAvgRatio     float64 `json:"peak_to_avg_ratio"`
}

type BatteryUse struct {
	RoundTripPct   float64 `json:"round_trip_pct"`
	Cycles         float64 `json:"cycles"`
	StateOfHealth  float64 `json:"state_of_health"`
	ThroughputKWh  float64 `json:"throughput_kwh"`
	DegradationKWh float64 `json:"degradation_kwh"`
	AvgSOCKWh      float64 `json:"avg_soc_kwh"`
	MaxSOCKWh      float64 `json:"max_soc_kwh"`
}

type GridInteraction struct {
	PeakImportKW float64 `json:"peak_import_kw"`
	PeakExportKW float64 `json:"peak_export_kw"`
}

type CarbonReport struct {
	pricing.Carbon
	PerKWh       float64 `json:"per_kwh"`
	AvoidedKg    float64 `json:"avoided_kg"`
	ReductionPct float64 `json:"reduction_pct"`
}

type Financial struct {
	CapEx         float64 `json:"capex"`
	DailySavings  float64 `json:"daily_savings"`
	AnnualSavings float64 `json:"annual_savings"`
	PaybackYears  float64 `json:"payback_years"`
	ROI10YrPct    float64 `json:"roi_10yr_pct"`
}

// Compute aggregates the ledger into a Report. The battery metrics must be
// the snapshot taken after the run; fin is optional.
func Compute(led *sim.Ledger, bm battery.Metrics, prices []float64, sellPrice float64, fin *FinancialParams) Report {
	n := led.Hours()
	cost := make([]float64, n)
	buy := make([]float64, n)
	sell := make([]float64, n)
	charge := make([]float64, n)
	discharge := make([]float64, n)
	soc := make([]float64, n)
	solar := make([]float64, n)
	load := make([]float64, n)
	for i, r := range led.Records {
		cost[i] = r.Cost
		buy[i] = r.GridBuyKW
		sell[i] = r.GridSellKW
		charge[i] = r.BatteryChargeKW
		discharge[i] = r.BatteryDischargeKW
		soc[i] = r.BatterySOCKWh
		solar[i] = r.SolarKW
		load[i] = r.LoadKW
	}

	var rpt Report

	totalLoad := floats.Sum(load)
	gridImport := floats.Sum(buy)
	gridExport := floats.Sum(sell)
	solarGen := floats.Sum(solar)

	rpt.Economic.TotalCost = floats.Sum(cost)
	gridCost := 0.0
	for i := range buy {
		gridCost += buy[i] * prices[i%len(prices)]
	}
	rpt.Economic.GridCost = gridCost
	rpt.Economic.ExportRevenue = gridExport * sellPrice
	rpt.Economic.NetCost = gridCost - rpt.Economic.ExportRevenue
	if totalLoad > 0 {
		rpt.Economic.CostPerKWh = rpt.Economic.NetCost / totalLoad
	}

	rpt.Energy = Energy{
		GridImportKWh:       gridImport,
		GridExportKWh:       gridExport,
		SolarKWh:            solarGen,
		LoadKWh:             totalLoad,
		BatteryChargeKWh:    floats.Sum(charge),
		BatteryDischargeKWh: floats.Sum(discharge),
	}

	if totalLoad > 0 {
		rpt.Performance.SelfSufficiencyPct = clampPct((1 - gridImport/totalLoad) * 100)
		rpt.Performance.GridDependencyPct = gridImport / totalLoad * 100
	}
	if solarGen > 0 {
		rpt.Performance.SelfConsumptionPct = (solarGen - gridExport) / solarGen * 100
		rpt.Performance.ExportRatioPct = gridExport / solarGen * 100
	}
	if solarGen > 0 && totalLoad > 0 {
		rpt.Performance.LoadMatchingPct = math.Min(solarGen, totalLoad) / math.Max(solarGen, totalLoad) * 100
	}
	if n > 0 {
		peakLoad := floats.Max(load)
		avgLoad := stat.Mean(load, nil)
		if avgLoad > 0 {
			rpt.Performance.PeakToAvgRatio = peakLoad / avgLoad
		}
		if peakLoad > 0 {
			rpt.Performance.LoadFactorPct = avgLoad / peakLoad * 100
		}
		rpt.Grid.PeakImportKW = floats.Max(buy)
		rpt.Grid.PeakExportKW = floats.Max(sell)
		rpt.Battery.AvgSOCKWh = stat.Mean(soc, nil)
		rpt.Battery.MaxSOCKWh = floats.Max(soc)
	}

	if rpt.Energy.BatteryChargeKWh > 0 {
		rpt.Battery.RoundTripPct = rpt.Energy.BatteryDischargeKWh / rpt.Energy.BatteryChargeKWh * 100
	}
	rpt.Battery.Cycles = bm.Cycles
	rpt.Battery.StateOfHealth = bm.StateOfHealth
	rpt.Battery.ThroughputKWh = bm.ThroughputKWh
	rpt.Battery.DegradationKWh = bm.DegradationKWh

	rpt.Carbon.Carbon = pricing.CarbonEmissions(gridImport, solarGen)
	if totalLoad > 0 {
		rpt.Carbon.PerKWh = rpt.Carbon.TotalKg / totalLoad
	}
	pureGrid := totalLoad * pricing.GridCarbonIntensity
	rpt.Carbon.AvoidedKg = pureGrid - rpt.Carbon.TotalKg
	if pureGrid > 0 {
		rpt.Carbon.ReductionPct = rpt.Carbon.AvoidedKg / pureGrid * 100
	}

	if fin != nil {
		f := *fin
		f.SetDefaults()
		capex := f.BatteryKWh*f.BatteryCostPerKWh + f.SolarKW*f.SolarCostPerKW
		baseline := totalLoad * f.BaselineRate
		daily := baseline - rpt.Economic.NetCost
		annual := daily * 365
		payback := math.Inf(1)
		if annual > 0 {
			payback = capex / annual
		}
		roi := 0.0
		if capex > 0 {
			roi = (annual*10 - capex) / capex * 100
		}
		rpt.Financial = &Financial{
			CapEx:         capex,
			DailySavings:  daily,
			AnnualSavings: annual,
			PaybackYears:  payback,
			ROI10YrPct:    roi,
		}
	}

	return rpt
}

func clampPct(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
