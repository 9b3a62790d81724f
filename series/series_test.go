package series

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		period int
		index  int
		want   float64
	}{
		{
			name:   "5-period SMA at last index",
			values: []float64{10, 20, 30, 40, 50},
			period: 5,
			index:  4,
			want:   30.0,
		},
		{
			name:   "3-period SMA mid-series",
			values: []float64{10, 20, 30, 40, 50},
			period: 3,
			index:  3,
			want:   30.0,
		},
		{
			name:   "period of one is identity",
			values: []float64{7, 9, 11},
			period: 1,
			index:  1,
			want:   9.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.values, tt.period)
			if !almostEqual(got[tt.index], tt.want) {
				t.Errorf("SMA[%d] = %v, want %v", tt.index, got[tt.index], tt.want)
			}
		})
	}
}

func TestSMA_UndefinedBeforePeriod(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	out := SMA(values, 4)

	for i := 0; i < 3; i++ {
		if IsDefined(out[i]) {
			t.Errorf("SMA[%d] = %v, want undefined before period-1", i, out[i])
		}
	}
	for i := 3; i < len(out); i++ {
		if !IsDefined(out[i]) {
			t.Errorf("SMA[%d] undefined, want defined at i >= period-1", i)
		}
	}
}

func TestSMA_PropagatesUndefinedInputs(t *testing.T) {
	values := []float64{1, 2, math.NaN(), 4, 5, 6, 7}
	out := SMA(values, 3)

	// Windows covering index 2 must be undefined, later windows recover.
	for _, i := range []int{2, 3, 4} {
		if IsDefined(out[i]) {
			t.Errorf("SMA[%d] = %v, want undefined (window contains NaN)", i, out[i])
		}
	}
	if !almostEqual(out[6], 6.0) {
		t.Errorf("SMA[6] = %v, want 6.0", out[6])
	}
}

func TestStdDev_Population(t *testing.T) {
	// Classic population example: mean 5, sigma exactly 2.
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	got := StdDev(values, 8, 7)
	if !almostEqual(got, 2.0) {
		t.Errorf("StdDev = %v, want 2.0 (population, divide by period)", got)
	}
}

func TestStdDev_Undefined(t *testing.T) {
	values := []float64{1, 2, 3}
	if IsDefined(StdDev(values, 3, 1)) {
		t.Error("StdDev before period-1 should be undefined")
	}
	if IsDefined(StdDev(values, 3, 5)) {
		t.Error("StdDev past the end should be undefined")
	}
	withNaN := []float64{1, math.NaN(), 3}
	if IsDefined(StdDev(withNaN, 3, 2)) {
		t.Error("StdDev over a window containing NaN should be undefined")
	}
}

func TestBollinger_BandOrdering(t *testing.T) {
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/5)
	}

	bands := Bollinger(closes, DefaultBollinger)

	for i := range closes {
		if i < DefaultBollinger.Period-1 {
			if IsDefined(bands.Middle[i]) || IsDefined(bands.Upper[i]) || IsDefined(bands.Lower[i]) {
				t.Errorf("bands at %d should be undefined before period-1", i)
			}
			continue
		}
		if !IsDefined(bands.Middle[i]) {
			t.Fatalf("middle band undefined at %d", i)
		}
		if bands.Lower[i] > bands.Middle[i] || bands.Middle[i] > bands.Upper[i] {
			t.Errorf("band ordering violated at %d: lower=%v middle=%v upper=%v",
				i, bands.Lower[i], bands.Middle[i], bands.Upper[i])
		}
	}
}

func TestBollinger_ConfigurableVariant(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(50 + i%7)
	}

	narrow := Bollinger(closes, DefaultBollinger)
	wide := Bollinger(closes, LongTermBollinger)

	// The 30/3 variant has a longer warm-up and wider bands once defined.
	if IsDefined(wide.Middle[25]) {
		t.Error("30-period bands should be undefined at index 25")
	}
	i := 39
	narrowWidth := narrow.Upper[i] - narrow.Lower[i]
	wideWidth := wide.Upper[i] - wide.Lower[i]
	if !IsDefined(narrowWidth) || !IsDefined(wideWidth) {
		t.Fatal("both variants should be defined at the last index")
	}
	if wideWidth <= narrowWidth {
		t.Errorf("3-sigma bands (%v) should be wider than 2-sigma (%v)", wideWidth, narrowWidth)
	}
}

func TestWoodiePivots(t *testing.T) {
	pp, ok := WoodiePivots(100, 90, 95)
	if !ok {
		t.Fatal("expected pivots for valid OHLC inputs")
	}

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"pivot", pp.Pivot, 95.0},
		{"R1", pp.R1, 100.0},
		{"R2", pp.R2, 105.0},
		{"R3", pp.R3, 115.0},
		{"S1", pp.S1, 90.0},
		{"S2", pp.S2, 85.0},
		{"S3", pp.S3, 75.0},
	}
	for _, c := range checks {
		if !almostEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestWoodiePivots_Preconditions(t *testing.T) {
	tests := []struct {
		name             string
		high, low, close float64
	}{
		{"zero high", 0, 90, 95},
		{"negative low", 100, -1, 95},
		{"low above high", 90, 100, 95},
		{"close above high", 100, 90, 101},
		{"close below low", 100, 90, 89},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := WoodiePivots(tt.high, tt.low, tt.close); ok {
				t.Errorf("WoodiePivots(%v,%v,%v) ok, want precondition rejection",
					tt.high, tt.low, tt.close)
			}
		})
	}
}
