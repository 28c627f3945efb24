package pricing

import (
	"math"
	"testing"
)

func TestTOU(t *testing.T) {
	prices := TOU()
	if len(prices) != 24 {
		t.Fatalf("got %d hours", len(prices))
	}
	want := map[int]float64{0: 3, 6: 3, 7: 12, 9: 12, 10: 5, 16: 5, 17: 12, 20: 12, 21: 5, 23: 5}
	for hour, price := range want {
		if prices[hour] != price {
			t.Errorf("hour %d = %v, want %v", hour, prices[hour], price)
		}
	}
}

func TestFlat(t *testing.T) {
	prices := Flat(4.5)
	if len(prices) != 24 {
		t.Fatalf("got %d hours", len(prices))
	}
	for hour, p := range prices {
		if p != 4.5 {
			t.Fatalf("hour %d = %v", hour, p)
		}
	}
}

func TestDynamic(t *testing.T) {
	prices := Dynamic(5, 0.5, 42)
	if len(prices) != 24 {
		t.Fatalf("got %d hours", len(prices))
	}
	for hour, p := range prices {
		if p < 2.0-1e-9 {
			t.Errorf("hour %d price %v below floor", hour, p)
		}
	}

	again := Dynamic(5, 0.5, 42)
	for hour := range prices {
		if prices[hour] != again[hour] {
			t.Fatal("same seed produced different walks")
		}
	}
	other := Dynamic(5, 0.5, 43)
	same := true
	for hour := range prices {
		if prices[hour] != other[hour] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical walks")
	}
}

func TestCurve(t *testing.T) {
	if got := Curve("flat", 7, 0, 0, 1); got[0] != 7 {
		t.Errorf("flat curve = %v", got[0])
	}
	if got := Curve("flat", 0, 0, 0, 1); got[0] != 5.0 {
		t.Errorf("flat default = %v", got[0])
	}
	if got := Curve("tou", 0, 0, 0, 1); got[7] != 12 {
		t.Errorf("tou curve hour 7 = %v", got[7])
	}
	if got := Curve("unknown", 0, 0, 0, 1); got[7] != 12 {
		t.Errorf("unknown model should fall back to tou, got %v", got[7])
	}
	if got := Curve("dynamic", 0, 0, 0, 9); len(got) != 24 {
		t.Errorf("dynamic curve has %d hours", len(got))
	}
}

func TestCost(t *testing.T) {
	buy := []float64{2, 0, 1}
	sell := []float64{0, 3, 0}
	prices := []float64{5, 5, 12}

	costs := Cost(buy, sell, prices, 3)
	want := []float64{10, -9, 12}
	for i := range want {
		if math.Abs(costs[i]-want[i]) > 1e-9 {
			t.Errorf("hour %d cost = %v, want %v", i, costs[i], want[i])
		}
	}
}

func TestCarbonEmissions(t *testing.T) {
	c := CarbonEmissions(100, 50)
	if math.Abs(c.GridKg-82) > 1e-9 {
		t.Errorf("grid = %v, want 82", c.GridKg)
	}
	if math.Abs(c.SolarKg-2.5) > 1e-9 {
		t.Errorf("solar = %v, want 2.5", c.SolarKg)
	}
	if math.Abs(c.TotalKg-84.5) > 1e-9 {
		t.Errorf("total = %v", c.TotalKg)
	}
	if math.Abs(c.IntensityKg-84.5/150) > 1e-9 {
		t.Errorf("intensity = %v", c.IntensityKg)
	}

	zero := CarbonEmissions(0, 0)
	if zero.IntensityKg != 0 {
		t.Errorf("zero energy intensity = %v", zero.IntensityKg)
	}
}
