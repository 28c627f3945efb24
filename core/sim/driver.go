// Package sim executes dispatch strategies against a battery over a fixed
// hourly horizon. Stepwise strategies advance one hour at a time through
// the battery's physical model; global strategies return a whole-horizon
// plan the driver adopts verbatim.
package sim

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/core/logger"
	"github.com/kilianp07/emsim/core/strategy"
)

// Execution modes recorded on the ledger.
const (
	ModeStepwise = "step"
	ModeGlobal   = "global"
)

// ErrContractViolation indicates a strategy's output does not satisfy the
// driver's contract (for instance a plan series of the wrong length). It is
// fatal for the run and never silently defaulted.
var ErrContractViolation = errors.New("strategy contract violation")

// Driver runs simulations. The zero value is not usable; construct with New.
type Driver struct {
	log logger.Logger
}

// New returns a Driver logging through log. A nil logger is replaced with a
// no-op one.
func New(log logger.Logger) *Driver {
	if log == nil {
		log = logger.Nop{}
	}
	return &Driver{log: log}
}

// Run executes strat over the horizon and returns the completed ledger.
// The execution mode is implied by the strategy's shape. The battery must
// be exclusively owned by this run.
func (d *Driver) Run(ctx context.Context, solar, load []float64, bat *battery.Battery, prices []float64, sellPrice float64, strat strategy.Strategy) (*Ledger, error) {
	hours := len(solar)
	if len(load) != hours || len(prices) != hours {
		return nil, fmt.Errorf("%w: input series lengths differ (solar=%d load=%d prices=%d)",
			ErrContractViolation, hours, len(load), len(prices))
	}

	switch s := strat.(type) {
	case strategy.Global:
		return d.runGlobal(ctx, solar, load, bat, prices, sellPrice, s)
	case strategy.Stepwise:
		return d.runStepwise(ctx, solar, load, bat, prices, sellPrice, s)
	default:
		return nil, fmt.Errorf("%w: strategy %q implements neither Stepwise nor Global",
			ErrContractViolation, strat.Name())
	}
}

func (d *Driver) runStepwise(ctx context.Context, solar, load []float64, bat *battery.Battery, prices []float64, sellPrice float64, strat strategy.Stepwise) (*Ledger, error) {
	hours := len(solar)
	led := newLedger(strat.Name(), ModeStepwise, hours)

	for t := 0; t < hours; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		decision := strat.Decide(t, load[t], solar[t], bat, prices[t], sellPrice)

		// Exactly one battery action per hour. Charge wins ties: a
		// misbehaving strategy requesting both only gets its charge
		// executed. Kept as-is; see design notes.
		var actualCharge, actualDischarge float64
		if decision.BatteryCharge > 0 {
			actualCharge = bat.Charge(decision.BatteryCharge)
		} else if decision.BatteryDischarge > 0 {
			actualDischarge = bat.Discharge(decision.BatteryDischarge)
		}

		// Billed on the requested grid values, not on the realized
		// battery throughput.
		cost := decision.GridBuy*prices[t] - decision.GridSell*sellPrice

		led.Records = append(led.Records, Record{
			Hour:               t,
			SolarKW:            solar[t],
			LoadKW:             load[t],
			NetLoadKW:          load[t] - solar[t],
			Price:              prices[t],
			GridBuyKW:          decision.GridBuy,
			GridSellKW:         decision.GridSell,
			BatteryChargeKW:    actualCharge,
			BatteryDischargeKW: actualDischarge,
			BatterySOCKWh:      bat.SoC(),
			Cost:               cost,
		})
	}

	led.finalize()
	d.log.Debugw("stepwise run complete", map[string]any{
		"strategy": strat.Name(),
		"hours":    hours,
		"cost":     led.TotalCost(),
	})
	return led, nil
}

func (d *Driver) runGlobal(ctx context.Context, solar, load []float64, bat *battery.Battery, prices []float64, sellPrice float64, strat strategy.Global) (*Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hours := len(solar)
	plan, err := strat.Plan(load, solar, bat, prices, sellPrice)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strat.Name(), err)
	}
	if err := validatePlan(plan, hours); err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strat.Name(), err)
	}

	led := newLedger(strat.Name(), ModeGlobal, hours)
	for t := 0; t < hours; t++ {
		led.Records = append(led.Records, Record{
			Hour:               t,
			SolarKW:            solar[t],
			LoadKW:             load[t],
			NetLoadKW:          load[t] - solar[t],
			Price:              prices[t],
			GridBuyKW:          plan.GridBuy[t],
			GridSellKW:         plan.GridSell[t],
			BatteryChargeKW:    plan.BatteryCharge[t],
			BatteryDischargeKW: plan.BatteryDischarge[t],
			BatterySOCKWh:      plan.BatterySOC[t],
			Cost:               plan.Cost[t],
		})
	}

	led.finalize()
	d.log.Debugw("global run complete", map[string]any{
		"strategy": strat.Name(),
		"hours":    hours,
		"cost":     led.TotalCost(),
	})
	return led, nil
}

// validatePlan checks that every required series spans the horizon. The
// plan is otherwise trusted: global strategies own their own consistency.
func validatePlan(p strategy.Plan, hours int) error {
	series := map[string][]float64{
		"grid_buy":          p.GridBuy,
		"grid_sell":         p.GridSell,
		"battery_charge":    p.BatteryCharge,
		"battery_discharge": p.BatteryDischarge,
		"battery_soc":       p.BatterySOC,
		"cost":              p.Cost,
	}
	for name, s := range series {
		if len(s) != hours {
			return fmt.Errorf("%w: plan series %q has length %d, want %d",
				ErrContractViolation, name, len(s), hours)
		}
	}
	return nil
}
