package scenarios

import (
	"context"
	"fmt"

	"github.com/kilianp07/emsim/core/logger"
	"github.com/kilianp07/emsim/core/pricing"
	"github.com/kilianp07/emsim/core/profile"
	"github.com/kilianp07/emsim/core/sim"
)

// Result collects the outcome of one scenario run.
type Result struct {
	Scenario string
	Ledgers  map[string]*sim.Ledger
	Costs    map[string]float64
	Winner   string
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

func (r *Result) failf(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

// Run executes a scenario and evaluates its expectations.
func Run(ctx context.Context, sc *Scenario, log logger.Logger) (*Result, error) {
	solar, load, prices, err := sc.inputs()
	if err != nil {
		return nil, err
	}

	driver := sim.New(log)
	ledgers, err := driver.Compare(ctx, solar, load, sc.Battery.ToConfig(), prices, sc.SellPrice, sc.Strategies)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Scenario: sc.Name,
		Ledgers:  ledgers,
		Costs:    make(map[string]float64, len(ledgers)),
	}

	best := ""
	for _, name := range sc.Strategies {
		led := ledgers[name]
		cost := led.TotalCost()
		res.Costs[name] = cost
		if best == "" || cost < res.Costs[best] {
			best = name
		}
		if err := led.CheckEnergyBalance(sc.ToleranceKWh); err != nil {
			res.failf("%s: %v", name, err)
		}
	}
	res.Winner = best

	if want := sc.Expected.Winner; want != "" && best != want {
		res.failf("winner: got %s (%.2f), want %s (%.2f)", best, res.Costs[best], want, res.Costs[want])
	}
	for name, ceil := range sc.Expected.MaxCost {
		cost, ok := res.Costs[name]
		if !ok {
			res.failf("max_cost names unknown strategy %s", name)
			continue
		}
		if cost > ceil {
			res.failf("%s: total cost %.2f exceeds %.2f", name, cost, ceil)
		}
	}
	return res, nil
}

// inputs resolves the solar, load and price series of the scenario,
// generating profiles and tariffs when explicit series are absent.
func (sc *Scenario) inputs() (solar, load, prices []float64, err error) {
	solar, load = sc.Solar, sc.Load
	if solar == nil || load == nil {
		gen := profile.NewGenerator(sc.Profile.Seed)
		md := gen.MultiDayProfiles(profile.MultiDayOptions{
			Days:    sc.Days,
			Type:    sc.Profile.Type,
			Weather: sc.Profile.Weather,
			Noise:   sc.Profile.Noise,
		})
		if solar == nil {
			solar = md.Solar
		}
		if load == nil {
			load = md.Load
		}
	}
	if len(solar) != len(load) {
		return nil, nil, nil, fmt.Errorf("scenario %s: solar has %d hours, load has %d", sc.Name, len(solar), len(load))
	}
	hours := len(solar)

	prices = sc.Prices
	if prices == nil {
		day := pricing.Curve(sc.Tariff, 0, 0, 0, sc.Profile.Seed)
		for len(prices) < hours {
			prices = append(prices, day...)
		}
		prices = prices[:hours]
	}
	if len(prices) != hours {
		return nil, nil, nil, fmt.Errorf("scenario %s: prices has %d hours, want %d", sc.Name, len(prices), hours)
	}
	return solar, load, prices, nil
}
