package indicators

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func equalSeries(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Errorf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

func TestMovingAverages(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	equalSeries(t, "sma", CalculateSMA(data, 3), []float64{0, 0, 2, 3, 4})
	equalSeries(t, "ema", CalculateEMA(data, 3), []float64{0, 0, 2, 3, 4})
	equalSeries(t, "short", CalculateSMA(data, 6), []float64{0, 0, 0, 0, 0})
}

func TestLast(t *testing.T) {
	if v := Last([]float64{1, 2, 3}, 3); v == nil || *v != 3 {
		t.Errorf("Last = %v, want 3", v)
	}
	if v := Last([]float64{1, 2}, 3); v != nil {
		t.Errorf("Last on short series = %v, want nil", *v)
	}
}

func TestCalculateRSI(t *testing.T) {
	rising := make([]float64, 15)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	if got := CalculateRSI(rising, 14)[14]; got != 100 {
		t.Errorf("rising RSI = %v, want 100", got)
	}

	if got := CalculateRSI([]float64{10, 11, 10}, 2)[2]; !approx(got, 50) {
		t.Errorf("balanced RSI = %v, want 50", got)
	}
}

func TestCalculateATR_ConstantRange(t *testing.T) {
	n := 20
	highs, lows, closes := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range closes {
		closes[i] = 10
		highs[i] = 11
		lows[i] = 9
	}
	atr := CalculateATR(highs, lows, closes, 14)
	if !approx(atr[13], 2) || !approx(atr[19], 2) {
		t.Errorf("ATR = %v / %v, want 2", atr[13], atr[19])
	}
}

func TestCalculateADX(t *testing.T) {
	n := 30
	highs, lows, closes := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := range closes {
		closes[i] = float64(i)
		highs[i] = float64(i + 1)
		lows[i] = float64(i - 1)
	}

	adx := CalculateADX(highs, lows, closes, 14)
	if adx[26] != 0 {
		t.Errorf("adx[26] = %v, want warmup zero", adx[26])
	}
	if !approx(adx[27], 100) || !approx(adx[29], 100) {
		t.Errorf("one-way trend ADX = %v / %v, want 100", adx[27], adx[29])
	}

	short := CalculateADX(highs[:10], lows[:10], closes[:10], 14)
	for i, v := range short {
		if v != 0 {
			t.Fatalf("short series adx[%d] = %v", i, v)
		}
	}
}

func TestCalculateBollingerBands_Flat(t *testing.T) {
	closes := []float64{5, 5, 5, 5}
	bands := CalculateBollingerBands(closes, 3, 2)
	if bands.Upper[3] != 5 || bands.Middle[3] != 5 || bands.Lower[3] != 5 {
		t.Errorf("flat bands = %v/%v/%v", bands.Upper[3], bands.Middle[3], bands.Lower[3])
	}
	if bands.Upper[1] != 0 {
		t.Errorf("warmup upper = %v", bands.Upper[1])
	}
}

func TestCalculateVWAP(t *testing.T) {
	got := CalculateVWAP([]float64{10, 20}, []float64{10, 20}, []float64{10, 20}, []float64{1, 3})
	equalSeries(t, "vwap", got, []float64{10, 17.5})
}

func TestClassicPivots(t *testing.T) {
	got := ClassicPivots(110, 90, 100)
	want := PivotPoints{P: 100, R1: 110, R2: 120, R3: 130, S1: 90, S2: 80, S3: 70}
	if got != want {
		t.Errorf("ClassicPivots = %+v, want %+v", got, want)
	}
}

func TestFindPivots(t *testing.T) {
	lows := FindPivotLows([]float64{5, 4, 3, 4, 5}, 2, 2)
	if len(lows) != 1 || lows[0] != (Pivot{Index: 2, Price: 3}) {
		t.Errorf("pivot lows = %+v", lows)
	}
	if ties := FindPivotLows([]float64{5, 3, 3, 4, 5}, 1, 1); len(ties) != 0 {
		t.Errorf("equal neighbours produced pivots: %+v", ties)
	}
	highs := FindPivotHighs([]float64{1, 2, 3, 2, 1}, 2, 2)
	if len(highs) != 1 || highs[0].Index != 2 {
		t.Errorf("pivot highs = %+v", highs)
	}
}

func TestCalculateFibRetracement(t *testing.T) {
	tests := []struct {
		name    string
		highs   []float64
		lows    []float64
		trendUp bool
		level   float64
	}{
		{"up swing", []float64{12, 11, 10, 15, 20}, []float64{9, 8, 5, 10, 18}, true, 20 - 0.618*15},
		{"down swing", []float64{20, 15, 12, 10, 9}, []float64{18, 12, 8, 6, 5}, false, 5 + 0.618*15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fib, ok := CalculateFibRetracement(tt.highs, tt.lows, 0)
			if !ok {
				t.Fatal("expected a retracement")
			}
			if fib.Start != 5 || fib.End != 20 {
				t.Errorf("start/end = %v/%v, want 5/20", fib.Start, fib.End)
			}
			if fib.TrendUp != tt.trendUp {
				t.Errorf("TrendUp = %v", fib.TrendUp)
			}
			if !approx(fib.Level618, tt.level) {
				t.Errorf("Level618 = %v, want %v", fib.Level618, tt.level)
			}
		})
	}

	if _, ok := CalculateFibRetracement([]float64{5, 5}, []float64{5, 5}, 0); ok {
		t.Error("flat window should not produce a retracement")
	}
}
