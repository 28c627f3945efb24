// Package metrics records completed simulation runs for observability.
// Sinks are optional: the simulator works fully without any configured.
package metrics

import "time"

// RunResult summarises one completed simulation run.
type RunResult struct {
	RunID     string
	Strategy  string
	Mode      string
	Hours     int
	TotalCost float64
	FinalSOH  float64
	SolveTime time.Duration
	Time      time.Time
}

// RunSink records run results for observability purposes.
type RunSink interface {
	RecordRun(result RunResult) error
}

// NopSink implements RunSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunResult) error { return nil }

// Config defines settings for the metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":2112"
	}
}
