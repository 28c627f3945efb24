package sim

import (
	"context"
	"fmt"

	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/core/strategy"
)

// RunMultiDay tiles a 24 hour price curve across the length of the solar
// and load profiles and executes a single run over the concatenated
// horizon. One battery carries its state, wear included, across day
// boundaries. Records are annotated with their day index and hour of day
// by the ledger.
func (d *Driver) RunMultiDay(ctx context.Context, solar, load []float64, cfg battery.Config, dayPrices []float64, sellPrice float64, strat strategy.Strategy) (*Ledger, error) {
	hours := len(solar)
	if len(dayPrices) != 24 {
		return nil, fmt.Errorf("%w: day price curve has %d hours, want 24", ErrContractViolation, len(dayPrices))
	}
	if hours%24 != 0 {
		return nil, fmt.Errorf("%w: multi-day horizon %d is not a whole number of days", ErrContractViolation, hours)
	}

	bat, err := battery.New(cfg)
	if err != nil {
		return nil, err
	}

	prices := make([]float64, hours)
	for t := range prices {
		prices[t] = dayPrices[t%24]
	}
	return d.Run(ctx, solar, load, bat, prices, sellPrice, strat)
}
