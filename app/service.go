// Package app wires the configured collaborators into a runnable
// simulation service.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/emsim/config"
	"github.com/kilianp07/emsim/core/battery"
	"github.com/kilianp07/emsim/core/kpi"
	"github.com/kilianp07/emsim/core/pricing"
	"github.com/kilianp07/emsim/core/profile"
	"github.com/kilianp07/emsim/core/sim"
	"github.com/kilianp07/emsim/core/strategy"
	"github.com/kilianp07/emsim/infra/logger"
	"github.com/kilianp07/emsim/infra/metrics"
)

// Inputs is one generated scenario: profiles, tariff and feed-in price.
type Inputs struct {
	Solar     []float64
	Load      []float64
	Prices    []float64
	DayPrices []float64
	SellPrice float64
}

// Service executes simulations according to the loaded configuration.
type Service struct {
	cfg    *config.Config
	log    logger.Logger
	sink   metrics.RunSink
	driver *sim.Driver

	influx *metrics.InfluxSink
}

// New builds a Service from cfg, constructing the configured metric sinks.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("emsim")

	svc := &Service{cfg: cfg, log: logg, driver: sim.New(logg)}

	var sinks []metrics.RunSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			svc.influx = is
		}
		sinks = append(sinks, sink)
	}
	switch len(sinks) {
	case 0:
		svc.sink = metrics.NopSink{}
	case 1:
		svc.sink = sinks[0]
	default:
		svc.sink = metrics.NewMultiSink(sinks...)
	}
	return svc, nil
}

// Start launches background infrastructure such as the Prometheus
// endpoint. It returns immediately.
func (s *Service) Start(ctx context.Context) {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
}

// Close releases sink resources.
func (s *Service) Close() error {
	if s.influx != nil {
		s.influx.Close()
	}
	return nil
}

// BuildInputs synthesises the profiles and tariff selected by the
// configuration. Multi-day horizons concatenate per-day profiles with
// weekend shapes and per-day weather.
func (s *Service) BuildInputs() Inputs {
	gen := profile.NewGenerator(s.cfg.Profile.Seed)
	dayPrices := pricing.Curve(s.cfg.Pricing.Model, s.cfg.Pricing.FlatRate,
		s.cfg.Pricing.BasePrice, s.cfg.Pricing.Volatility, s.cfg.Profile.Seed)

	in := Inputs{DayPrices: dayPrices, SellPrice: s.cfg.Simulation.SellPrice}

	days := s.cfg.Simulation.Days
	if days > 1 {
		md := gen.MultiDayProfiles(profile.MultiDayOptions{
			Days:    days,
			Type:    s.cfg.Profile.Type,
			Weather: s.cfg.Profile.Weather,
			Noise:   s.cfg.Profile.Noise,
		})
		in.Solar = md.Solar
		in.Load = md.Load
	} else {
		in.Solar = gen.Solar(profile.SolarOptions{
			PeakKW:  s.cfg.Profile.SolarPeakKW,
			Noise:   s.cfg.Profile.Noise,
			Weather: s.cfg.Profile.Weather,
		})
		in.Load = gen.LoadProfile(profile.LoadOptions{
			Type:  s.cfg.Profile.Type,
			Noise: s.cfg.Profile.Noise,
		}).Total
	}

	in.Prices = make([]float64, len(in.Solar))
	for t := range in.Prices {
		in.Prices[t] = dayPrices[t%24]
	}
	return in
}

// buildStrategy resolves name, applying configured thresholds where the
// policy takes them.
func (s *Service) buildStrategy(name string) (strategy.Strategy, error) {
	switch name {
	case "peak_shaving":
		return strategy.NewPeakShaving(s.cfg.Simulation.PeakThresholdKW), nil
	case "greedy":
		return strategy.NewGreedy(s.cfg.Simulation.HighPrice, s.cfg.Simulation.LowPrice), nil
	default:
		return strategy.New(name)
	}
}

// RunOutcome bundles the artifacts of one simulation.
type RunOutcome struct {
	Ledger  *sim.Ledger
	Report  kpi.Report
	Battery battery.Metrics
}

// Simulate runs one strategy over the configured scenario, records the run
// on the metric sinks and returns the ledger with its KPI report.
func (s *Service) Simulate(ctx context.Context, name string) (*RunOutcome, error) {
	strat, err := s.buildStrategy(name)
	if err != nil {
		return nil, err
	}
	bat, err := battery.New(s.cfg.Battery)
	if err != nil {
		return nil, err
	}

	in := s.BuildInputs()

	start := time.Now()
	led, err := s.driver.Run(ctx, in.Solar, in.Load, bat, in.Prices, in.SellPrice, strat)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if err := led.CheckEnergyBalance(s.cfg.Simulation.BalanceToleranceKWh); err != nil {
		s.log.Warnf("run %s: %v", led.RunID, err)
	}

	bm := bat.Metrics()
	if err := s.sink.RecordRun(metrics.RunResult{
		RunID:     led.RunID,
		Strategy:  led.Strategy,
		Mode:      led.Mode,
		Hours:     led.Hours(),
		TotalCost: led.TotalCost(),
		FinalSOH:  bm.StateOfHealth,
		SolveTime: elapsed,
		Time:      time.Now(),
	}); err != nil {
		s.log.Errorf("record run: %v", err)
	}

	fin := &kpi.FinancialParams{BatteryKWh: s.cfg.Battery.CapacityKWh, SolarKW: s.cfg.Profile.SolarPeakKW}
	rpt := kpi.Compute(led, bm, in.Prices, in.SellPrice, fin)

	s.log.Infof("simulated %s over %dh: total cost %.2f", name, led.Hours(), led.TotalCost())
	return &RunOutcome{Ledger: led, Report: rpt, Battery: bm}, nil
}

// Compare runs every named strategy over the same scenario with a fresh
// battery each and returns the ledgers keyed by name. An empty names slice
// selects every registered strategy.
func (s *Service) Compare(ctx context.Context, names []string) (map[string]*sim.Ledger, error) {
	if len(names) == 0 {
		names = strategy.Names()
	}
	in := s.BuildInputs()

	start := time.Now()
	results, err := s.driver.Compare(ctx, in.Solar, in.Load, s.cfg.Battery, in.Prices, in.SellPrice, names)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	for _, led := range results {
		if err := s.sink.RecordRun(metrics.RunResult{
			RunID:     led.RunID,
			Strategy:  led.Strategy,
			Mode:      led.Mode,
			Hours:     led.Hours(),
			TotalCost: led.TotalCost(),
			SolveTime: elapsed,
			Time:      time.Now(),
		}); err != nil {
			s.log.Errorf("record run: %v", err)
		}
	}
	return results, nil
}
