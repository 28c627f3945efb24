package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records simulation runs in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	solveTime *prometheus.HistogramVec
	lastCost  *prometheus.GaugeVec
}

// NewPromSink registers run metrics on the provided Prometheus registerer.
// If reg is nil, the default registerer is used. If the collectors are
// already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "simulation_runs_total",
		Help: "Total number of completed simulation runs",
	}, []string{"strategy", "mode"})
	solveTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "simulation_solve_seconds",
		Help:    "Wall time spent executing one simulation run",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy", "mode"})
	lastCost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "simulation_last_total_cost",
		Help: "Net cost of the most recent run per strategy",
	}, []string{"strategy"})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(solveTime); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			solveTime = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(lastCost); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			lastCost = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, solveTime: solveTime, lastCost: lastCost}, nil
}

// RecordRun increments the run counter and observes the solve time.
func (s *PromSink) RecordRun(r RunResult) error {
	s.runs.WithLabelValues(r.Strategy, r.Mode).Inc()
	s.solveTime.WithLabelValues(r.Strategy, r.Mode).Observe(r.SolveTime.Seconds())
	s.lastCost.WithLabelValues(r.Strategy).Set(r.TotalCost)
	return nil
}
