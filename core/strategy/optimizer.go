package strategy

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/kilianp07/emsim/core/battery"
)

// ErrUnsolved indicates the LP solver returned no usable solution. It is
// always surfaced to the caller; an unsolved horizon never degrades to a
// zero-filled plan.
var ErrUnsolved = errors.New("horizon optimization unsolved")

// LinearOptimizer formulates the whole horizon as a linear program and
// solves it exactly with the simplex method, yielding the globally minimal
// cost for the linear objective.
//
// Nothing in the formulation forbids charging and discharging in the same
// hour; the cost-minimizing pressure discourages it but a degenerate price
// pattern may allow it. Forbidding it would require binary variables and a
// MILP solver, which is a deliberate non-change.
type LinearOptimizer struct{}

// Name implements Strategy.
func (LinearOptimizer) Name() string { return "linear_optimizer" }

// Plan implements Global. The battery contributes only its call-time
// capacity, stored energy, power ratings and effective efficiency; it is
// not mutated.
func (LinearOptimizer) Plan(load, solar []float64, bat *battery.Battery, prices []float64, sellPrice float64) (Plan, error) {
	hours := len(load)
	if hours == 0 {
		return Plan{}, nil
	}
	if len(solar) != hours || len(prices) != hours {
		return Plan{}, fmt.Errorf("horizon mismatch: load=%d solar=%d prices=%d", hours, len(solar), len(prices))
	}

	sol, err := lpSolve(horizonProblem{
		load:         load,
		solar:        solar,
		prices:       prices,
		sellPrice:    sellPrice,
		capacity:     bat.Capacity(),
		initialSoC:   bat.SoC(),
		maxCharge:    bat.MaxCharge(),
		maxDischarge: bat.MaxDischarge(),
		efficiency:   bat.Efficiency(),
	})
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrUnsolved, err)
	}

	plan := Plan{
		GridBuy:          make([]float64, hours),
		GridSell:         make([]float64, hours),
		BatteryCharge:    make([]float64, hours),
		BatteryDischarge: make([]float64, hours),
		BatterySOC:       make([]float64, hours),
		Cost:             make([]float64, hours),
	}
	for t := 0; t < hours; t++ {
		plan.GridBuy[t] = clampNonNegative(sol[t])
		plan.GridSell[t] = clampNonNegative(sol[hours+t])
		plan.BatteryCharge[t] = clampNonNegative(sol[2*hours+t])
		plan.BatteryDischarge[t] = clampNonNegative(sol[3*hours+t])
		plan.BatterySOC[t] = clampNonNegative(sol[4*hours+t])
		plan.Cost[t] = plan.GridBuy[t]*prices[t] - plan.GridSell[t]*sellPrice
	}
	return plan, nil
}

// MPC solves the same full-horizon LP in one shot. A true receding-horizon
// controller re-solving each step with updated forecasts is an extension
// point, not implemented behavior.
type MPC struct {
	LinearOptimizer
}

// Name implements Strategy.
func (MPC) Name() string { return "mpc" }

// horizonProblem carries the data of one full-horizon LP.
type horizonProblem struct {
	load, solar, prices     []float64
	sellPrice               float64
	capacity, initialSoC    float64
	maxCharge, maxDischarge float64
	efficiency              float64
}

// lpSolve points to the function used to solve the LP. Tests override it to
// simulate solver failures.
var lpSolve = solveHorizon

// solveHorizon builds the general-form LP and runs the simplex algorithm.
//
// Variables, H per group, in order: grid buy, grid sell, battery charge,
// battery discharge, SOC. Objective: minimize Σ buy[t]·price[t] −
// sell[t]·sellPrice. Equalities: hourly energy balance and the SOC
// recursion soc[t] = soc[t-1] + charge[t]·efficiency − discharge[t] with
// soc[-1] the battery's call-time stored energy. Inequalities: variable
// bounds.
func solveHorizon(p horizonProblem) ([]float64, error) {
	hours := len(p.load)
	n := 5 * hours
	buy := func(t int) int { return t }
	sell := func(t int) int { return hours + t }
	charge := func(t int) int { return 2*hours + t }
	discharge := func(t int) int { return 3*hours + t }
	soc := func(t int) int { return 4*hours + t }

	c := make([]float64, n)
	for t := 0; t < hours; t++ {
		c[buy(t)] = p.prices[t]
		c[sell(t)] = -p.sellPrice
	}

	// Bounds as G·x ≤ h: every variable is non-negative, charge/discharge
	// are capped by the power ratings and SOC by the usable capacity.
	rows := n + 3*hours
	g := mat.NewDense(rows, n, nil)
	h := make([]float64, rows)
	for i := 0; i < n; i++ {
		g.Set(i, i, -1)
	}
	for t := 0; t < hours; t++ {
		g.Set(n+t, charge(t), 1)
		h[n+t] = p.maxCharge
		g.Set(n+hours+t, discharge(t), 1)
		h[n+hours+t] = p.maxDischarge
		g.Set(n+2*hours+t, soc(t), 1)
		h[n+2*hours+t] = p.capacity
	}

	a := mat.NewDense(2*hours, n, nil)
	b := make([]float64, 2*hours)
	for t := 0; t < hours; t++ {
		// solar + buy + discharge = load + sell + charge
		a.Set(t, buy(t), 1)
		a.Set(t, sell(t), -1)
		a.Set(t, discharge(t), 1)
		a.Set(t, charge(t), -1)
		b[t] = p.load[t] - p.solar[t]

		// soc[t] − soc[t-1] − efficiency·charge[t] + discharge[t] = soc(-1)|0
		row := hours + t
		a.Set(row, soc(t), 1)
		a.Set(row, charge(t), -p.efficiency)
		a.Set(row, discharge(t), 1)
		if t == 0 {
			b[row] = p.initialSoC
		} else {
			a.Set(row, soc(t-1), -1)
		}
	}

	cStd, aStd, bStd := lp.Convert(c, g, h, a, b)
	_, xStd, err := lp.Simplex(cStd, aStd, bStd, 1e-7, nil)
	if err != nil {
		return nil, err
	}

	// Convert splits each free variable v into a non-negative pair
	// (v⁺, v⁻); recover v = v⁺ − v⁻ and drop the slack columns.
	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = xStd[i] - xStd[n+i]
	}
	return x, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
