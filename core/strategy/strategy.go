// Package strategy implements the dispatch policies of the simulator.
// Policies come in two shapes: stepwise rules deciding one hour at a time
// from the live battery state, and global optimizers planning the entire
// horizon in a single call. The simulation driver dispatches on the shape,
// so the execution contract is a type-level guarantee rather than a naming
// convention.
package strategy

import (
	"fmt"
	"sort"

	"github.com/kilianp07/emsim/core/battery"
)

// Decision is one hour of dispatch. All values are kW and non-negative; a
// well-behaved policy sets at most one of BatteryCharge/BatteryDischarge.
type Decision struct {
	GridBuy          float64 `json:"grid_buy"`
	GridSell         float64 `json:"grid_sell"`
	BatteryCharge    float64 `json:"battery_charge"`
	BatteryDischarge float64 `json:"battery_discharge"`
}

// Plan is a full-horizon dispatch schedule produced by a global policy,
// including the SOC trajectory it derived for itself. The driver adopts it
// verbatim, so a global policy owns its own consistency.
type Plan struct {
	GridBuy          []float64 `json:"grid_buy"`
	GridSell         []float64 `json:"grid_sell"`
	BatteryCharge    []float64 `json:"battery_charge"`
	BatteryDischarge []float64 `json:"battery_discharge"`
	BatterySOC       []float64 `json:"battery_soc"`
	Cost             []float64 `json:"cost"`
}

// Strategy is the common capability of both shapes.
type Strategy interface {
	Name() string
}

// Stepwise policies are called once per hour with scalar conditions. They
// may read the battery but must not mutate it; mutation happens when the
// driver commits the returned decision.
type Stepwise interface {
	Strategy
	Decide(hour int, load, solar float64, bat *battery.Battery, price, sellPrice float64) Decision
}

// Global policies receive the whole horizon and return a complete plan.
type Global interface {
	Strategy
	Plan(load, solar []float64, bat *battery.Battery, prices []float64, sellPrice float64) (Plan, error)
}

// Info describes a strategy for presentation purposes only; nothing in the
// scheduling path reads it.
type Info struct {
	Description string `json:"description"`
	Complexity  string `json:"complexity"`
	SuitedFor   string `json:"suited_for"`
}

var registry = map[string]func() Strategy{
	"naive":            func() Strategy { return Naive{} },
	"self_consumption": func() Strategy { return SelfConsumption{} },
	"peak_shaving":     func() Strategy { return NewPeakShaving(0) },
	"time_of_use":      func() Strategy { return TimeOfUse{} },
	"greedy":           func() Strategy { return NewGreedy(0, 0) },
	"linear_optimizer": func() Strategy { return LinearOptimizer{} },
	"mpc":              func() Strategy { return MPC{} },
}

var infos = map[string]Info{
	"naive":            {Description: "No optimization, direct grid connection", Complexity: "Low", SuitedFor: "Baseline comparison"},
	"self_consumption": {Description: "Maximize on-site solar usage", Complexity: "Low", SuitedFor: "Simple self-consumption goals"},
	"peak_shaving":     {Description: "Reduce maximum grid demand", Complexity: "Medium", SuitedFor: "Demand charge reduction"},
	"time_of_use":      {Description: "Charge off-peak, discharge on-peak", Complexity: "Medium", SuitedFor: "TOU tariffs"},
	"greedy":           {Description: "Locally optimal decisions", Complexity: "Medium", SuitedFor: "Dynamic pricing"},
	"linear_optimizer": {Description: "Global LP optimization", Complexity: "High", SuitedFor: "Cost minimization (optimal)"},
	"mpc":              {Description: "Model Predictive Control", Complexity: "High", SuitedFor: "Rolling horizon optimization"},
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return mk(), nil
}

// Names lists the registered strategy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns presentation metadata for name.
func Describe(name string) Info {
	info, ok := infos[name]
	if !ok {
		return Info{Description: "Unknown strategy"}
	}
	return info
}
