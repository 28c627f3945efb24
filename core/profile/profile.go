// Package profile synthesises hourly solar generation and load demand
// curves. The simulation core consumes only the summed load total; the
// critical/flexible split exists for reporting.
package profile

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Weather conditions scaling solar irradiance.
const (
	WeatherSunny        = "sunny"
	WeatherCloudy       = "cloudy"
	WeatherRainy        = "rainy"
	WeatherMixed        = "mixed"
	WeatherPartlyCloudy = "partly_cloudy"
)

// Load profile archetypes.
const (
	TypeResidential = "residential"
	TypeCommercial  = "commercial"
	TypeIndustrial  = "industrial"
)

var weatherFactors = map[string]float64{
	WeatherSunny:        1.0,
	WeatherCloudy:       0.5,
	WeatherRainy:        0.2,
	WeatherMixed:        0.7,
	WeatherPartlyCloudy: 0.75,
}

// Generator produces reproducible profiles from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded for reproducibility.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// SolarOptions parameterise one day of solar generation.
type SolarOptions struct {
	PeakKW    float64
	Noise     float64
	Weather   string
	DayOfYear int
}

// Solar generates a 24 hour solar curve: a gaussian bell between 06:00 and
// 18:00 scaled by weather and a seasonal cosine peaking near the summer
// solstice. Noise adds cloud intermittency and forecast error.
func (g *Generator) Solar(opts SolarOptions) []float64 {
	if opts.PeakKW == 0 {
		opts.PeakKW = 5.0
	}
	if opts.DayOfYear == 0 {
		opts.DayOfYear = 180
	}
	factor, ok := weatherFactors[opts.Weather]
	if !ok {
		factor = 1.0
	}
	seasonal := 0.8 + 0.4*math.Cos(2*math.Pi*float64(opts.DayOfYear-172)/365)

	const sunrise, sunset = 6, 18
	solar := make([]float64, 24)
	for t := sunrise; t < sunset; t++ {
		fromNoon := float64(t - 12)
		adjusted := opts.PeakKW * math.Exp(-fromNoon*fromNoon/18) * factor * seasonal

		if opts.Noise > 0 {
			switch opts.Weather {
			case WeatherCloudy, WeatherMixed, WeatherPartlyCloudy:
				cloud := distuv.Uniform{Min: -0.3, Max: 0.3, Src: g.rng}
				adjusted = math.Max(0, adjusted+cloud.Rand()*adjusted)
			}
			forecast := distuv.Normal{Mu: 0, Sigma: opts.Noise * adjusted, Src: g.rng}
			if forecast.Sigma > 0 {
				adjusted += forecast.Rand()
			}
		}
		solar[t] = math.Max(0, adjusted)
	}
	return solar
}

// Load is a synthesised demand curve split into an always-on critical part
// and a shiftable flexible part.
type Load struct {
	Critical []float64
	Flexible []float64
	Total    []float64

	PeakKW     float64
	AvgKW      float64
	MinKW      float64
	TotalKWh   float64
	LoadFactor float64
}

// LoadOptions parameterise one day of demand.
type LoadOptions struct {
	Type    string
	Noise   float64
	Weekend bool
}

// LoadProfile generates a 24 hour demand curve for the given archetype.
func (g *Generator) LoadProfile(opts LoadOptions) Load {
	var critical, flexible []float64
	switch opts.Type {
	case TypeCommercial:
		critical, flexible = commercialShape(opts.Weekend)
	case TypeIndustrial:
		critical, flexible = industrialShape()
	default:
		critical, flexible = residentialShape(opts.Weekend)
	}

	if opts.Noise > 0 {
		critNoise := distuv.Normal{Mu: 0, Sigma: opts.Noise * 0.3, Src: g.rng}
		flexNoise := distuv.Normal{Mu: 0, Sigma: opts.Noise * 0.5, Src: g.rng}
		for t := 0; t < 24; t++ {
			critical[t] = math.Max(0.1, critical[t]+critNoise.Rand())
			flexible[t] = math.Max(0, flexible[t]+flexNoise.Rand())
		}
	}

	load := Load{Critical: critical, Flexible: flexible, Total: make([]float64, 24)}
	load.MinKW = math.Inf(1)
	for t := 0; t < 24; t++ {
		v := critical[t] + flexible[t]
		load.Total[t] = v
		load.TotalKWh += v
		load.PeakKW = math.Max(load.PeakKW, v)
		load.MinKW = math.Min(load.MinKW, v)
	}
	load.AvgKW = load.TotalKWh / 24
	if load.PeakKW > 0 {
		load.LoadFactor = load.AvgKW / load.PeakKW
	}
	return load
}

// MultiDay holds concatenated profiles over several days.
type MultiDay struct {
	Solar   []float64
	Load    []float64
	Weather []string
	Hours   int
}

// MultiDayOptions parameterise a multi-day generation.
type MultiDayOptions struct {
	Days    int
	Type    string
	Weather string
	Noise   float64
}

// MultiDayProfiles generates day-by-day profiles, picking a random weather
// for "mixed" patterns and switching to weekend shapes on days 5 and 6 of
// each week.
func (g *Generator) MultiDayProfiles(opts MultiDayOptions) MultiDay {
	choices := []string{WeatherSunny, WeatherCloudy, WeatherPartlyCloudy}
	out := MultiDay{Hours: opts.Days * 24}

	for day := 0; day < opts.Days; day++ {
		weather := opts.Weather
		if weather == WeatherMixed || weather == "" {
			weather = choices[g.rng.IntN(len(choices))]
		}
		weekend := day%7 == 5 || day%7 == 6

		solar := g.Solar(SolarOptions{Weather: weather, DayOfYear: 180 + day, Noise: opts.Noise})
		load := g.LoadProfile(LoadOptions{Type: opts.Type, Weekend: weekend, Noise: opts.Noise})

		out.Solar = append(out.Solar, solar...)
		out.Load = append(out.Load, load.Total...)
		for i := 0; i < 24; i++ {
			out.Weather = append(out.Weather, weather)
		}
	}
	return out
}

func residentialShape(weekend bool) (critical, flexible []float64) {
	if weekend {
		critical = []float64{
			0.5, 0.5, 0.5, 0.5, 0.5, 0.5,
			0.8, 1.0, 2.0, 2.5, 2.8, 3.0,
			3.2, 3.0, 2.8, 2.5, 2.5, 3.5,
			4.0, 4.2, 3.8, 3.0, 2.0, 1.0,
		}
		flexible = make([]float64, 24)
		flexible[10] = 2.5
		flexible[11] = 2.0
		flexible[14] = 1.5
		flexible[15] = 1.5
		return critical, flexible
	}
	critical = []float64{
		0.5, 0.5, 0.5, 0.5, 0.5, 0.8,
		1.5, 2.5, 2.8, 2.0, 1.2, 1.0,
		1.0, 1.0, 1.2, 1.5, 2.0, 3.0,
		4.2, 4.5, 4.0, 3.0, 2.0, 1.2,
	}
	flexible = make([]float64, 24)
	flexible[13] = 2.5 // washing machine
	flexible[14] = 2.0
	flexible[22] = 3.0 // EV charging
	flexible[23] = 3.0
	return critical, flexible
}

func commercialShape(weekend bool) (critical, flexible []float64) {
	if weekend {
		critical = make([]float64, 24)
		for i := range critical {
			critical[i] = 1.0
		}
		return critical, make([]float64, 24)
	}
	critical = []float64{
		0.5, 0.5, 0.5, 0.5, 0.5, 1.0,
		2.0, 4.0, 6.0, 7.5, 8.0, 8.5,
		9.0, 9.0, 8.5, 8.5, 8.0, 7.0,
		5.0, 3.0, 2.0, 1.5, 1.0, 0.8,
	}
	flexible = make([]float64, 24)
	flexible[12] = 2.0 // HVAC boost
	flexible[13] = 2.0
	return critical, flexible
}

func industrialShape() (critical, flexible []float64) {
	const base = 15.0
	critical = make([]float64, 24)
	for i := range critical {
		critical[i] = base
	}
	for i := 2; i < 6; i++ {
		critical[i] = base * 0.7 // maintenance window
	}
	for i := 10; i < 16; i++ {
		critical[i] = base * 1.2 // peak production
	}
	flexible = make([]float64, 24)
	flexible[3] = 2.0
	flexible[4] = 2.0
	return critical, flexible
}
