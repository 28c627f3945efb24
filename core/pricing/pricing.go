// Package pricing provides tariff curves and cost/carbon accounting for
// the simulator. Prices are in currency per kWh over hourly steps.
package pricing

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Grid constants.
const (
	DefaultSellPrice = 3.0 // feed-in tariff
	MaxGridImportKW  = 50.0
	MaxGridExportKW  = 10.0

	// Carbon intensities in kg CO2 per kWh. The solar figure covers
	// lifecycle emissions.
	GridCarbonIntensity  = 0.82
	SolarCarbonIntensity = 0.05
)

// peakHours are the expensive hours of the TOU tariff.
var peakHours = map[int]bool{7: true, 8: true, 9: true, 17: true, 18: true, 19: true, 20: true}

// TOU returns the fixed time-of-use tariff: off-peak nights, peak morning
// and evening blocks, mid-peak elsewhere.
func TOU() []float64 {
	prices := make([]float64, 0, 24)
	appendN := func(v float64, n int) {
		for i := 0; i < n; i++ {
			prices = append(prices, v)
		}
	}
	appendN(3, 7)
	appendN(12, 3)
	appendN(5, 7)
	appendN(12, 4)
	appendN(5, 3)
	return prices
}

// Flat returns a 24 hour flat tariff at rate.
func Flat(rate float64) []float64 {
	prices := make([]float64, 24)
	for i := range prices {
		prices[i] = rate
	}
	return prices
}

// Dynamic simulates a real-time tariff as a random walk around base with a
// floor of 2 and a 1.5x multiplier during peak hours.
func Dynamic(base, volatility float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed^0xa5a5a5a5a5a5a5a5))
	step := distuv.Normal{Mu: 0, Sigma: volatility, Src: rng}

	prices := make([]float64, 24)
	current := base
	for hour := range prices {
		current = math.Max(2.0, current+step.Rand())
		p := current
		if peakHours[hour] {
			p *= 1.5
		}
		prices[hour] = p
	}
	return prices
}

// Curve returns the tariff for the named model: "tou", "flat" or
// "dynamic". Unknown names fall back to the TOU tariff.
func Curve(model string, flatRate, base, volatility float64, seed uint64) []float64 {
	switch model {
	case "flat":
		if flatRate == 0 {
			flatRate = 5.0
		}
		return Flat(flatRate)
	case "dynamic":
		if base == 0 {
			base = 5.0
		}
		if volatility == 0 {
			volatility = 0.3
		}
		return Dynamic(base, volatility, seed)
	default:
		return TOU()
	}
}

// Cost returns the hourly net cost series for the given grid exchange.
func Cost(gridBuy, gridSell, prices []float64, sellPrice float64) []float64 {
	costs := make([]float64, len(gridBuy))
	for t := range costs {
		costs[t] = gridBuy[t]*prices[t] - gridSell[t]*sellPrice
	}
	return costs
}

// Carbon summarises emissions for a completed horizon.
type Carbon struct {
	GridKg      float64 `json:"grid_kg"`
	SolarKg     float64 `json:"solar_kg"`
	TotalKg     float64 `json:"total_kg"`
	IntensityKg float64 `json:"intensity_kg_per_kwh"`
}

// CarbonEmissions computes emissions for the total grid import and solar
// generation in kWh.
func CarbonEmissions(gridBuyKWh, solarKWh float64) Carbon {
	c := Carbon{
		GridKg:  gridBuyKWh * GridCarbonIntensity,
		SolarKg: solarKWh * SolarCarbonIntensity,
	}
	c.TotalKg = c.GridKg + c.SolarKg
	if total := gridBuyKWh + solarKWh; total > 0 {
		c.IntensityKg = c.TotalKg / total
	}
	return c
}
