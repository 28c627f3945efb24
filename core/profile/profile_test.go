package profile

import (
	"math"
	"testing"
)

func TestSolarShape(t *testing.T) {
	g := NewGenerator(1)
	solar := g.Solar(SolarOptions{Weather: WeatherSunny})

	if len(solar) != 24 {
		t.Fatalf("got %d hours", len(solar))
	}
	for h := 0; h < 6; h++ {
		if solar[h] != 0 {
			t.Errorf("hour %d produces %v before sunrise", h, solar[h])
		}
	}
	for h := 18; h < 24; h++ {
		if solar[h] != 0 {
			t.Errorf("hour %d produces %v after sunset", h, solar[h])
		}
	}
	for h := 6; h < 18; h++ {
		if solar[h] <= 0 {
			t.Errorf("hour %d produces nothing in daylight", h)
		}
	}

	// Noon is the bell's peak.
	for h := 6; h < 18; h++ {
		if solar[h] > solar[12] {
			t.Errorf("hour %d (%v) exceeds noon (%v)", h, solar[h], solar[12])
		}
	}
}

func TestSolarWeatherScaling(t *testing.T) {
	sunny := NewGenerator(1).Solar(SolarOptions{Weather: WeatherSunny})
	cloudy := NewGenerator(1).Solar(SolarOptions{Weather: WeatherCloudy})
	rainy := NewGenerator(1).Solar(SolarOptions{Weather: WeatherRainy})

	if cloudy[12] >= sunny[12] {
		t.Errorf("cloudy noon %v not below sunny %v", cloudy[12], sunny[12])
	}
	if rainy[12] >= cloudy[12] {
		t.Errorf("rainy noon %v not below cloudy %v", rainy[12], cloudy[12])
	}
	if math.Abs(cloudy[12]-sunny[12]*0.5) > 1e-9 {
		t.Errorf("cloudy factor: got %v, want half of %v", cloudy[12], sunny[12])
	}
}

func TestSolarSeasonality(t *testing.T) {
	summer := NewGenerator(1).Solar(SolarOptions{Weather: WeatherSunny, DayOfYear: 172})
	winter := NewGenerator(1).Solar(SolarOptions{Weather: WeatherSunny, DayOfYear: 355})
	if winter[12] >= summer[12] {
		t.Errorf("winter noon %v not below summer %v", winter[12], summer[12])
	}
}

func TestSolarReproducible(t *testing.T) {
	opts := SolarOptions{Weather: WeatherCloudy, Noise: 0.2}
	a := NewGenerator(42).Solar(opts)
	b := NewGenerator(42).Solar(opts)
	for h := range a {
		if a[h] != b[h] {
			t.Fatalf("hour %d differs across same-seed generators: %v vs %v", h, a[h], b[h])
		}
	}

	c := NewGenerator(43).Solar(opts)
	same := true
	for h := range a {
		if a[h] != c[h] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced identical noisy curves")
	}
}

func TestLoadProfileStatistics(t *testing.T) {
	for _, typ := range []string{TypeResidential, TypeCommercial, TypeIndustrial} {
		load := NewGenerator(1).LoadProfile(LoadOptions{Type: typ})
		if len(load.Total) != 24 {
			t.Fatalf("%s: got %d hours", typ, len(load.Total))
		}

		var sum, peak float64
		min := math.Inf(1)
		for h, v := range load.Total {
			if v <= 0 {
				t.Errorf("%s hour %d: non-positive load %v", typ, h, v)
			}
			if got := load.Critical[h] + load.Flexible[h]; math.Abs(got-v) > 1e-9 {
				t.Errorf("%s hour %d: total %v != critical+flexible %v", typ, h, v, got)
			}
			sum += v
			peak = math.Max(peak, v)
			min = math.Min(min, v)
		}
		if math.Abs(load.TotalKWh-sum) > 1e-9 || math.Abs(load.PeakKW-peak) > 1e-9 || math.Abs(load.MinKW-min) > 1e-9 {
			t.Errorf("%s statistics off: %+v", typ, load)
		}
		if math.Abs(load.AvgKW-sum/24) > 1e-9 {
			t.Errorf("%s avg = %v, want %v", typ, load.AvgKW, sum/24)
		}
		if lf := load.AvgKW / load.PeakKW; math.Abs(load.LoadFactor-lf) > 1e-9 {
			t.Errorf("%s load factor = %v, want %v", typ, load.LoadFactor, lf)
		}
	}
}

func TestLoadProfileWeekend(t *testing.T) {
	weekday := NewGenerator(1).LoadProfile(LoadOptions{Type: TypeCommercial})
	weekend := NewGenerator(1).LoadProfile(LoadOptions{Type: TypeCommercial, Weekend: true})
	if weekend.TotalKWh >= weekday.TotalKWh {
		t.Errorf("commercial weekend %v kWh not below weekday %v kWh", weekend.TotalKWh, weekday.TotalKWh)
	}
}

func TestMultiDayProfiles(t *testing.T) {
	md := NewGenerator(7).MultiDayProfiles(MultiDayOptions{Days: 7, Type: TypeResidential, Weather: WeatherSunny})
	if md.Hours != 7*24 || len(md.Solar) != md.Hours || len(md.Load) != md.Hours || len(md.Weather) != md.Hours {
		t.Fatalf("series lengths: %+v", md)
	}
	for h, w := range md.Weather {
		if w != WeatherSunny {
			t.Fatalf("hour %d weather %q, want fixed sunny", h, w)
		}
	}

	// Weekend days get a different residential shape than weekdays.
	if md.Load[0] == md.Load[5*24] && md.Load[12] == md.Load[5*24+12] {
		t.Error("day 5 load identical to day 0; weekend shape not applied")
	}
}

func TestMultiDayMixedWeatherVaries(t *testing.T) {
	md := NewGenerator(3).MultiDayProfiles(MultiDayOptions{Days: 30, Type: TypeResidential, Weather: WeatherMixed})
	seen := map[string]bool{}
	for _, w := range md.Weather {
		seen[w] = true
	}
	if len(seen) < 2 {
		t.Fatalf("mixed weather never varied over 30 days: %v", seen)
	}
}
