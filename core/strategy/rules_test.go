package strategy

import (
	"math"
	"testing"

	"github.com/kilianp07/emsim/core/battery"
)

func testBattery(t *testing.T, capacity, soc, maxPower, efficiency float64) *battery.Battery {
	t.Helper()
	b, err := battery.New(battery.Config{
		CapacityKWh:    capacity,
		InitialSoCKWh:  soc,
		MaxChargeKW:    maxPower,
		MaxDischargeKW: maxPower,
		Efficiency:     efficiency,
		TemperatureC:   25,
	})
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	return b
}

func decisionEqual(a, b Decision) bool {
	const tol = 1e-9
	return math.Abs(a.GridBuy-b.GridBuy) < tol &&
		math.Abs(a.GridSell-b.GridSell) < tol &&
		math.Abs(a.BatteryCharge-b.BatteryCharge) < tol &&
		math.Abs(a.BatteryDischarge-b.BatteryDischarge) < tol
}

func balanced(load, solar float64, d Decision) bool {
	return math.Abs(solar+d.GridBuy+d.BatteryDischarge-load-d.GridSell-d.BatteryCharge) < 1e-9
}

func TestNaiveDecide(t *testing.T) {
	bat := testBattery(t, 10, 5, 5, 0.95)

	got := Naive{}.Decide(0, 5, 2, bat, 5, 3)
	want := Decision{GridBuy: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("deficit: got %+v, want %+v", got, want)
	}

	got = Naive{}.Decide(0, 2, 5, bat, 5, 3)
	want = Decision{GridSell: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("surplus: got %+v, want %+v", got, want)
	}
}

func TestSelfConsumptionDecide(t *testing.T) {
	// Empty pack, surplus of 3: everything fits in the battery.
	bat := testBattery(t, 10, 0, 5, 0.95)
	got := SelfConsumption{}.Decide(0, 2, 5, bat, 5, 3)
	want := Decision{BatteryCharge: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("surplus: got %+v, want %+v", got, want)
	}

	// Surplus above power rating: remainder exported.
	got = SelfConsumption{}.Decide(0, 0, 8, bat, 5, 3)
	want = Decision{GridSell: 3, BatteryCharge: 5}
	if !decisionEqual(got, want) {
		t.Fatalf("large surplus: got %+v, want %+v", got, want)
	}

	// Deficit partially covered by stored energy.
	bat = testBattery(t, 10, 2, 5, 0.95)
	got = SelfConsumption{}.Decide(0, 6, 0, bat, 5, 3)
	want = Decision{GridBuy: 4, BatteryDischarge: 2}
	if !decisionEqual(got, want) {
		t.Fatalf("deficit: got %+v, want %+v", got, want)
	}
}

func TestPeakShavingDecide(t *testing.T) {
	p := NewPeakShaving(0)
	if p.Threshold != DefaultPeakThreshold {
		t.Fatalf("threshold = %v, want default %v", p.Threshold, DefaultPeakThreshold)
	}

	bat := testBattery(t, 10, 8, 5, 0.95)

	// Above threshold: only the excess is shaved.
	got := p.Decide(0, 9, 0, bat, 5, 3)
	want := Decision{GridBuy: 5, BatteryDischarge: 4}
	if !decisionEqual(got, want) {
		t.Fatalf("above threshold: got %+v, want %+v", got, want)
	}

	// Below threshold: plain import, battery untouched.
	got = p.Decide(0, 4, 0, bat, 5, 3)
	want = Decision{GridBuy: 4}
	if !decisionEqual(got, want) {
		t.Fatalf("below threshold: got %+v, want %+v", got, want)
	}

	// Surplus charges first.
	bat = testBattery(t, 10, 0, 5, 0.95)
	got = p.Decide(0, 1, 4, bat, 5, 3)
	want = Decision{BatteryCharge: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("surplus: got %+v, want %+v", got, want)
	}
}

func TestTimeOfUseDecide(t *testing.T) {
	bat := testBattery(t, 10, 4, 5, 0.95)

	// Peak hour deficit: battery first.
	got := TimeOfUse{}.Decide(18, 6, 0, bat, 12, 3)
	want := Decision{GridBuy: 2, BatteryDischarge: 4}
	if !decisionEqual(got, want) {
		t.Fatalf("peak deficit: got %+v, want %+v", got, want)
	}

	// Peak hour surplus: exported, not stored.
	got = TimeOfUse{}.Decide(18, 1, 4, bat, 12, 3)
	want = Decision{GridSell: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("peak surplus: got %+v, want %+v", got, want)
	}

	// Off-peak deficit: grid only.
	got = TimeOfUse{}.Decide(2, 6, 0, bat, 3, 3)
	want = Decision{GridBuy: 6}
	if !decisionEqual(got, want) {
		t.Fatalf("off-peak deficit: got %+v, want %+v", got, want)
	}

	// Off-peak surplus: stored first.
	got = TimeOfUse{}.Decide(2, 0, 4, bat, 3, 3)
	want = Decision{BatteryCharge: 4}
	if !decisionEqual(got, want) {
		t.Fatalf("off-peak surplus: got %+v, want %+v", got, want)
	}

	// Hours wrap across days.
	got = TimeOfUse{}.Decide(42, 6, 0, bat, 12, 3) // 42%24 = 18, peak
	if got.BatteryDischarge == 0 {
		t.Fatalf("hour 42 should behave as peak hour 18: %+v", got)
	}
}

func TestGreedyDecide(t *testing.T) {
	g := NewGreedy(0, 0)
	if g.HighPrice != DefaultHighPrice || g.LowPrice != DefaultLowPrice {
		t.Fatalf("thresholds = %+v, want defaults", g)
	}

	// High price deficit: drain the pack.
	bat := testBattery(t, 10, 4, 5, 0.95)
	got := g.Decide(0, 6, 0, bat, 12, 3)
	want := Decision{GridBuy: 2, BatteryDischarge: 4}
	if !decisionEqual(got, want) {
		t.Fatalf("high price deficit: got %+v, want %+v", got, want)
	}

	// High price surplus: sell everything.
	got = g.Decide(0, 1, 4, bat, 12, 3)
	want = Decision{GridSell: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("high price surplus: got %+v, want %+v", got, want)
	}

	// Low price deficit: import the load plus an opportunistic fill.
	bat = testBattery(t, 10, 2, 5, 0.95)
	got = g.Decide(0, 3, 0, bat, 3, 3)
	want = Decision{GridBuy: 8, BatteryCharge: 5}
	if !decisionEqual(got, want) {
		t.Fatalf("low price deficit: got %+v, want %+v", got, want)
	}
	if !balanced(3, 0, got) {
		t.Fatalf("low price deficit decision unbalanced: %+v", got)
	}

	// Low price surplus: store first.
	got = g.Decide(0, 0, 3, bat, 3, 3)
	want = Decision{BatteryCharge: 3}
	if !decisionEqual(got, want) {
		t.Fatalf("low price surplus: got %+v, want %+v", got, want)
	}

	// Medium price: delegates to self-consumption.
	bat = testBattery(t, 10, 2, 5, 0.95)
	got = g.Decide(0, 6, 0, bat, 5, 3)
	want = SelfConsumption{}.Decide(0, 6, 0, bat, 5, 3)
	if !decisionEqual(got, want) {
		t.Fatalf("medium price: got %+v, want self-consumption %+v", got, want)
	}
}

func TestDecisionsStayBalanced(t *testing.T) {
	type scenario struct {
		load, solar, price float64
	}
	scenarios := []scenario{
		{6, 0, 3}, {6, 0, 5}, {6, 0, 12},
		{0, 6, 3}, {0, 6, 5}, {0, 6, 12},
		{4, 4, 5}, {2, 5, 12}, {8, 1, 3},
	}
	policies := []Stepwise{Naive{}, SelfConsumption{}, NewPeakShaving(0), TimeOfUse{}, NewGreedy(0, 0)}

	for _, p := range policies {
		for _, sc := range scenarios {
			for hour := 0; hour < 24; hour++ {
				bat := testBattery(t, 10, 4, 5, 0.95)
				d := p.Decide(hour, sc.load, sc.solar, bat, sc.price, 3)
				if !balanced(sc.load, sc.solar, d) {
					t.Errorf("%s hour %d load %v solar %v price %v: unbalanced %+v",
						p.Name(), hour, sc.load, sc.solar, sc.price, d)
				}
				if d.GridBuy < 0 || d.GridSell < 0 || d.BatteryCharge < 0 || d.BatteryDischarge < 0 {
					t.Errorf("%s: negative field in %+v", p.Name(), d)
				}
			}
		}
	}
}
