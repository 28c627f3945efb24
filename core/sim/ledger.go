package sim

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Record is one hour of a completed simulation. Battery columns hold the
// energy the pack actually accepted or supplied; grid columns hold the
// strategy's requested values, which is also what the cost is billed on.
type Record struct {
	Hour      int     `json:"hour"`
	Day       int     `json:"day"`
	HourOfDay int     `json:"hour_of_day"`
	SolarKW   float64 `json:"solar_kw"`
	LoadKW    float64 `json:"load_kw"`
	NetLoadKW float64 `json:"net_load_kw"`
	Price     float64 `json:"price"`

	GridBuyKW          float64 `json:"grid_buy_kw"`
	GridSellKW         float64 `json:"grid_sell_kw"`
	BatteryChargeKW    float64 `json:"battery_charge_kw"`
	BatteryDischargeKW float64 `json:"battery_discharge_kw"`
	BatterySOCKWh      float64 `json:"battery_soc_kwh"`
	Cost               float64 `json:"cost"`

	CumulativeCost   float64 `json:"cumulative_cost"`
	CumulativeImport float64 `json:"cumulative_import"`
	CumulativeExport float64 `json:"cumulative_export"`
}

// Ledger is the ordered outcome of one simulation run. It is append-only
// while the run executes and immutable once returned.
type Ledger struct {
	RunID    string   `json:"run_id"`
	Strategy string   `json:"strategy"`
	Mode     string   `json:"mode"`
	Records  []Record `json:"records"`
}

func newLedger(strategy, mode string, hours int) *Ledger {
	return &Ledger{
		RunID:    uuid.NewString(),
		Strategy: strategy,
		Mode:     mode,
		Records:  make([]Record, 0, hours),
	}
}

// finalize derives the cumulative columns and the day annotations. They are
// recomputed identically for both execution modes.
func (l *Ledger) finalize() {
	var cost, imp, exp float64
	for i := range l.Records {
		r := &l.Records[i]
		cost += r.Cost
		imp += r.GridBuyKW
		exp += r.GridSellKW
		r.CumulativeCost = cost
		r.CumulativeImport = imp
		r.CumulativeExport = exp
		r.Day = i / 24
		r.HourOfDay = i % 24
	}
}

// TotalCost returns the net cost over the whole run.
func (l *Ledger) TotalCost() float64 {
	if len(l.Records) == 0 {
		return 0
	}
	return l.Records[len(l.Records)-1].CumulativeCost
}

// Hours returns the horizon length.
func (l *Ledger) Hours() int { return len(l.Records) }

// CheckEnergyBalance verifies that every hour conserves energy:
// solar + buy + discharge = load + sell + charge, within tol kWh.
func (l *Ledger) CheckEnergyBalance(tol float64) error {
	for i, r := range l.Records {
		in := r.SolarKW + r.GridBuyKW + r.BatteryDischargeKW
		out := r.LoadKW + r.GridSellKW + r.BatteryChargeKW
		if math.Abs(in-out) > tol {
			return fmt.Errorf("energy balance violated at hour %d: in=%.4f out=%.4f", i, in, out)
		}
	}
	return nil
}
