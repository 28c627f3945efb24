package battery

import (
	"math"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < tol }

func newTestBattery(t *testing.T, cfg Config) *Battery {
	t.Helper()
	b, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestChargeDischargeRoundTrip(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		MaxChargeKW:    10,
		MaxDischargeKW: 10,
		Efficiency:     0.9,
		TemperatureC:   25,
	})

	accepted := b.Charge(6)
	if !almostEqual(accepted, 6) {
		t.Fatalf("charge accepted %v, want 6", accepted)
	}
	if !almostEqual(b.SoC(), 5.4) {
		t.Fatalf("soc after charge = %v, want 5.4", b.SoC())
	}

	supplied := b.Discharge(10)
	if !almostEqual(supplied, 5.4) {
		t.Fatalf("discharge supplied %v, want 5.4", supplied)
	}
	if !almostEqual(b.SoC(), 0) {
		t.Fatalf("soc after discharge = %v, want 0", b.SoC())
	}
}

func TestChargeClampsToPowerRating(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     1.0,
		TemperatureC:   25,
	})
	if accepted := b.Charge(8); !almostEqual(accepted, 5) {
		t.Fatalf("accepted %v, want power-rated 5", accepted)
	}
}

func TestChargeClampsToHeadroom(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		InitialSoCKWh:  9,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     1.0,
		TemperatureC:   25,
	})
	if accepted := b.Charge(5); !almostEqual(accepted, 1) {
		t.Fatalf("accepted %v, want headroom 1", accepted)
	}
	if b.SoC() > b.Capacity()+tol {
		t.Fatalf("soc %v exceeds capacity %v", b.SoC(), b.Capacity())
	}
}

func TestDischargeClampsToStoredEnergy(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		InitialSoCKWh:  2,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     1.0,
		TemperatureC:   25,
	})
	if supplied := b.Discharge(100); !almostEqual(supplied, 2) {
		t.Fatalf("supplied %v, want stored 2", supplied)
	}
	if b.SoC() < 0 {
		t.Fatalf("soc went negative: %v", b.SoC())
	}
}

func TestZeroRequestsAreIdempotent(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		InitialSoCKWh:  5,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     0.95,
		TemperatureC:   25,
	})
	before := b.Metrics()
	b.Charge(0)
	b.Discharge(0)
	after := b.Metrics()

	if after.SoCKWh != before.SoCKWh || after.CapacityKWh != before.CapacityKWh ||
		after.ThroughputKWh != before.ThroughputKWh || after.Cycles != before.Cycles {
		t.Fatalf("zero requests changed state: before %+v after %+v", before, after)
	}
	if after.ChargeEvents != 0 || after.DischargeEvents != 0 {
		t.Fatalf("zero requests counted as events: %+v", after)
	}
}

// A full pack accepts nothing, but the attempt is still counted.
func TestChargeEventCountedOnRejectedRequest(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:     10,
		InitialSoCKWh:   10,
		MaxChargeKW:     5,
		MaxDischargeKW:  5,
		Efficiency:      1.0,
		DegradationRate: 0,
		TemperatureC:    25,
	})
	if accepted := b.Charge(3); accepted != 0 {
		t.Fatalf("full pack accepted %v", accepted)
	}
	if m := b.Metrics(); m.ChargeEvents != 1 {
		t.Fatalf("charge events = %d, want 1", m.ChargeEvents)
	}
}

func TestNegativeRequestsAcceptNothing(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		InitialSoCKWh:  5,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     1.0,
		TemperatureC:   25,
	})
	if got := b.Charge(-3); got != 0 {
		t.Errorf("negative charge accepted %v", got)
	}
	if got := b.Discharge(-3); got != 0 {
		t.Errorf("negative discharge supplied %v", got)
	}
	if m := b.Metrics(); m.ChargeEvents != 0 || m.DischargeEvents != 0 {
		t.Errorf("negative requests counted as events: %+v", m)
	}
	if !almostEqual(b.SoC(), 5) {
		t.Errorf("soc changed to %v", b.SoC())
	}
}

func TestDegradationMonotonic(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:     13.5,
		MaxChargeKW:     5,
		MaxDischargeKW:  5,
		Efficiency:      0.95,
		DegradationRate: 0.001,
		TemperatureC:    25,
	})

	prevCapacity := b.Capacity()
	prevSOH := b.Metrics().StateOfHealth
	prevThroughput := 0.0
	for i := 0; i < 50; i++ {
		b.Charge(5)
		b.Discharge(5)
		m := b.Metrics()
		if m.CapacityKWh > prevCapacity+tol {
			t.Fatalf("capacity grew at cycle %d: %v > %v", i, m.CapacityKWh, prevCapacity)
		}
		if m.StateOfHealth > prevSOH+tol {
			t.Fatalf("state of health grew at cycle %d", i)
		}
		if m.ThroughputKWh < prevThroughput {
			t.Fatalf("throughput decreased at cycle %d", i)
		}
		if b.SoC() < -tol || b.SoC() > m.CapacityKWh+tol {
			t.Fatalf("soc %v outside [0,%v] at cycle %d", b.SoC(), m.CapacityKWh, i)
		}
		prevCapacity = m.CapacityKWh
		prevSOH = m.StateOfHealth
		prevThroughput = m.ThroughputKWh
	}

	m := b.Metrics()
	if m.CapacityKWh >= b.RatedCapacity() {
		t.Fatalf("capacity %v did not degrade below rated %v", m.CapacityKWh, b.RatedCapacity())
	}
	wantCycles := m.ThroughputKWh / (2 * b.RatedCapacity())
	if !almostEqual(m.Cycles, wantCycles) {
		t.Fatalf("cycles = %v, want %v", m.Cycles, wantCycles)
	}
}

func TestZeroDegradationRateStillAccruesCycleLoss(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:     10,
		MaxChargeKW:     10,
		MaxDischargeKW:  10,
		Efficiency:      1.0,
		DegradationRate: 0,
		TemperatureC:    25,
	})
	b.Charge(10)
	b.Discharge(10)

	m := b.Metrics()
	if m.DegradationKWh <= 0 {
		t.Fatal("expected cycle wear despite zero throughput rate")
	}
	wantLoss := m.Cycles * (0.2 / 3000.0) * 10
	if got := b.RatedCapacity() - b.Capacity(); !almostEqual(got, wantLoss) {
		t.Fatalf("capacity loss = %v, want cycle term %v", got, wantLoss)
	}
}

func TestTemperatureFactorSteps(t *testing.T) {
	cases := []struct {
		celsius float64
		factor  float64
	}{
		{25, 1.0},
		{34.9, 1.0},
		{15.1, 1.0},
		{35, 0.98},
		{10, 0.98},
		{45, 0.95},
		{0, 0.95},
		{55, 0.90},
		{-10, 0.90},
	}
	for _, tc := range cases {
		b := newTestBattery(t, Config{
			CapacityKWh:    10,
			MaxChargeKW:    5,
			MaxDischargeKW: 5,
			Efficiency:     1.0,
			TemperatureC:   25,
		})
		b.SetTemperature(tc.celsius)
		if !almostEqual(b.Efficiency(), tc.factor) {
			t.Errorf("efficiency at %v°C = %v, want %v", tc.celsius, b.Efficiency(), tc.factor)
		}
	}
}

func TestSetTemperatureDoesNotWear(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    10,
		MaxChargeKW:    5,
		MaxDischargeKW: 5,
		Efficiency:     0.95,
		TemperatureC:   25,
	})
	b.SetTemperature(-10)
	m := b.Metrics()
	if m.CapacityKWh != 10 || m.StateOfHealth != 100 {
		t.Fatalf("temperature change degraded the pack: %+v", m)
	}
	if !almostEqual(b.Efficiency(), 0.95*0.90) {
		t.Fatalf("efficiency = %v, want %v", b.Efficiency(), 0.95*0.90)
	}
}

func TestPeakPowerTracking(t *testing.T) {
	b := newTestBattery(t, Config{
		CapacityKWh:    20,
		MaxChargeKW:    8,
		MaxDischargeKW: 8,
		Efficiency:     1.0,
		TemperatureC:   25,
	})
	b.Charge(3)
	b.Charge(7)
	b.Discharge(5)
	if m := b.Metrics(); !almostEqual(m.PeakPowerKW, 7) {
		t.Fatalf("peak power = %v, want 7", m.PeakPowerKW)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 0.95, TemperatureC: 25}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]Config{
		"zero capacity":     {MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 0.95},
		"negative soc":      {CapacityKWh: 10, InitialSoCKWh: -1, MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 0.95},
		"soc over capacity": {CapacityKWh: 10, InitialSoCKWh: 11, MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 0.95},
		"negative power":    {CapacityKWh: 10, MaxChargeKW: -5, MaxDischargeKW: 5, Efficiency: 0.95},
		"efficiency high":   {CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 1.5},
		"efficiency zero":   {CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5},
		"negative wear":     {CapacityKWh: 10, MaxChargeKW: 5, MaxDischargeKW: 5, Efficiency: 0.95, DegradationRate: -1},
	}
	for name, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
		if _, err := New(cfg); err == nil {
			t.Errorf("%s: New accepted invalid config", name)
		}
	}
}

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()
	if cfg.CapacityKWh != 13.5 || cfg.MaxChargeKW != 5 || cfg.MaxDischargeKW != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Efficiency != 0.95 || cfg.DegradationRate != 0.00005 || cfg.TemperatureC != 25 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	explicit := Config{CapacityKWh: 20, MaxChargeKW: 7, MaxDischargeKW: 7, Efficiency: 0.9, DegradationRate: 0.001, TemperatureC: 10}
	explicit.SetDefaults()
	if explicit.CapacityKWh != 20 || explicit.DegradationRate != 0.001 {
		t.Fatalf("defaults overwrote explicit values: %+v", explicit)
	}
}
