package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/core/strategy"
)

// Compare runs the same inputs against every named strategy and returns
// the ledgers keyed by strategy name. Each strategy gets an independently
// constructed battery from cfg, so no mutable state is shared and the
// per-strategy runs execute in parallel.
func (d *Driver) Compare(ctx context.Context, solar, load []float64, cfg battery.Config, prices []float64, sellPrice float64, names []string) (map[string]*Ledger, error) {
	results := make(map[string]*Ledger, len(names))
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)

	for _, name := range names {
		strat, err := strategy.New(name)
		if err != nil {
			return nil, err
		}
		bat, err := battery.New(cfg)
		if err != nil {
			return nil, err
		}

		wg.Add(1)
		go func(name string, strat strategy.Strategy, bat *battery.Battery) {
			defer wg.Done()
			led, err := d.Run(ctx, solar, load, bat, prices, sellPrice, strat)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("strategy %s: %w", name, err)
				}
				return
			}
			results[name] = led
		}(name, strat, bat)
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
