package strategy

import (
	"math"

	"github.com/kilianp07/emsim/core/battery"
)

// Naive ignores the battery entirely: deficits are imported, surpluses
// exported. It serves as the cost baseline every other policy is measured
// against.
type Naive struct{}

// Name implements Strategy.
func (Naive) Name() string { return "naive" }

// Decide implements Stepwise.
func (Naive) Decide(_ int, load, solar float64, _ *battery.Battery, _, _ float64) Decision {
	net := load - solar
	if net > 0 {
		return Decision{GridBuy: net}
	}
	return Decision{GridSell: -net}
}

// SelfConsumption maximises on-site solar usage: deficits are served from
// the battery before the grid, surpluses charge the battery before export.
type SelfConsumption struct{}

// Name implements Strategy.
func (SelfConsumption) Name() string { return "self_consumption" }

// Decide implements Stepwise.
func (SelfConsumption) Decide(_ int, load, solar float64, bat *battery.Battery, _, _ float64) Decision {
	net := load - solar
	if net > 0 {
		fromBattery := math.Min(math.Min(net, bat.SoC()), bat.MaxDischarge())
		return Decision{
			GridBuy:          math.Max(0, net-fromBattery),
			BatteryDischarge: fromBattery,
		}
	}
	surplus := -net
	toBattery := math.Min(math.Min(surplus, bat.Capacity()-bat.SoC()), bat.MaxCharge())
	return Decision{
		GridSell:      math.Max(0, surplus-toBattery),
		BatteryCharge: toBattery,
	}
}

// DefaultPeakThreshold is the net load above which PeakShaving engages the
// battery, in kW.
const DefaultPeakThreshold = 5.0

// PeakShaving discharges the battery only for the portion of net load
// exceeding a fixed threshold, flattening the import profile.
type PeakShaving struct {
	Threshold float64
}

// NewPeakShaving returns a PeakShaving policy. A non-positive threshold
// selects DefaultPeakThreshold.
func NewPeakShaving(threshold float64) PeakShaving {
	if threshold <= 0 {
		threshold = DefaultPeakThreshold
	}
	return PeakShaving{Threshold: threshold}
}

// Name implements Strategy.
func (PeakShaving) Name() string { return "peak_shaving" }

// Decide implements Stepwise.
func (p PeakShaving) Decide(_ int, load, solar float64, bat *battery.Battery, _, _ float64) Decision {
	net := load - solar
	switch {
	case net > p.Threshold:
		help := math.Min(math.Min(net-p.Threshold, bat.SoC()), bat.MaxDischarge())
		return Decision{
			GridBuy:          net - help,
			BatteryDischarge: help,
		}
	case net > 0:
		return Decision{GridBuy: net}
	default:
		surplus := -net
		toBattery := math.Min(math.Min(surplus, bat.Capacity()-bat.SoC()), bat.MaxCharge())
		return Decision{
			GridSell:      math.Max(0, surplus-toBattery),
			BatteryCharge: toBattery,
		}
	}
}

// peakHours are the expensive tariff hours of the day.
var peakHours = map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true, 20: true}

// TimeOfUse follows a fixed peak-hour rule: during peak hours the battery
// covers deficits and surpluses are exported at the valuable rate; off-peak
// the grid is used freely and surpluses are stored first.
type TimeOfUse struct{}

// Name implements Strategy.
func (TimeOfUse) Name() string { return "time_of_use" }

// Decide implements Stepwise.
func (TimeOfUse) Decide(hour int, load, solar float64, bat *battery.Battery, _, _ float64) Decision {
	net := load - solar
	if peakHours[hour%24] {
		if net > 0 {
			help := math.Min(math.Min(net, bat.SoC()), bat.MaxDischarge())
			return Decision{
				GridBuy:          math.Max(0, net-help),
				BatteryDischarge: help,
			}
		}
		return Decision{GridSell: -net}
	}
	if net > 0 {
		return Decision{GridBuy: net}
	}
	surplus := -net
	toBattery := math.Min(math.Min(surplus, bat.Capacity()-bat.SoC()), bat.MaxCharge())
	return Decision{
		GridSell:      math.Max(0, surplus-toBattery),
		BatteryCharge: toBattery,
	}
}

// Default price thresholds for the Greedy policy, in currency per kWh.
const (
	DefaultHighPrice = 10.0
	DefaultLowPrice  = 4.0
)

// Greedy arbitrages the spot price against fixed thresholds: above the high
// threshold it avoids imports and exports surplus, below the low threshold
// it charges opportunistically even while importing, and in between it
// falls back to plain self-consumption.
type Greedy struct {
	HighPrice float64
	LowPrice  float64
}

// NewGreedy returns a Greedy policy; non-positive thresholds select the
// defaults.
func NewGreedy(high, low float64) Greedy {
	if high <= 0 {
		high = DefaultHighPrice
	}
	if low <= 0 {
		low = DefaultLowPrice
	}
	return Greedy{HighPrice: high, LowPrice: low}
}

// Name implements Strategy.
func (Greedy) Name() string { return "greedy" }

// Decide implements Stepwise.
func (g Greedy) Decide(hour int, load, solar float64, bat *battery.Battery, price, sellPrice float64) Decision {
	net := load - solar
	switch {
	case price > g.HighPrice:
		if net > 0 {
			help := math.Min(math.Min(net, bat.SoC()), bat.MaxDischarge())
			return Decision{
				GridBuy:          math.Max(0, net-help),
				BatteryDischarge: help,
			}
		}
		return Decision{GridSell: -net}
	case price < g.LowPrice:
		if net > 0 {
			// Cheap energy: serve the load and fill the pack on top. The
			// import covers both so the hour stays energy balanced.
			extra := math.Min(bat.Capacity()-bat.SoC(), bat.MaxCharge())
			return Decision{
				GridBuy:       net + extra,
				BatteryCharge: extra,
			}
		}
		surplus := -net
		toBattery := math.Min(math.Min(surplus, bat.Capacity()-bat.SoC()), bat.MaxCharge())
		return Decision{
			GridSell:      math.Max(0, surplus-toBattery),
			BatteryCharge: toBattery,
		}
	default:
		return SelfConsumption{}.Decide(hour, load, solar, bat, price, sellPrice)
	}
}
