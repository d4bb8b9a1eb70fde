package indicators

// FibRetracement describes the 0.618 retracement of the most recent swing.
// Start is always the swing low and End the swing high; Trend says which came last.
type FibRetracement struct {
	Start     float64
	End       float64
	Level618  float64
	TrendUp   bool
	HighIndex int
	LowIndex  int
}

const pivotBars = 5

// CalculateFibRetracement locates the latest swing inside the last lookback candles and
// returns its 0.618 retracement. Pivots are preferred; when the window holds no pivot on a
// side, the raw extreme is used instead. ok is false when the window has no range.
func CalculateFibRetracement(highs, lows []float64, lookback int) (FibRetracement, bool) {
	n := len(highs)
	if n == 0 || len(lows) != n {
		return FibRetracement{}, false
	}
	if lookback <= 0 || lookback > n {
		lookback = n
	}
	offset := n - lookback
	windowHighs := highs[offset:]
	windowLows := lows[offset:]

	high, ok := highestPivot(FindPivotHighs(windowHighs, pivotBars, pivotBars))
	if !ok {
		high = extreme(windowHighs, func(a, b float64) bool { return a > b })
	}
	low, ok := lowestPivot(FindPivotLows(windowLows, pivotBars, pivotBars))
	if !ok {
		low = extreme(windowLows, func(a, b float64) bool { return a < b })
	}

	if high.Price <= low.Price {
		return FibRetracement{}, false
	}

	fib := FibRetracement{
		Start:     low.Price,
		End:       high.Price,
		TrendUp:   low.Index < high.Index,
		HighIndex: high.Index + offset,
		LowIndex:  low.Index + offset,
	}
	span := high.Price - low.Price
	if fib.TrendUp {
		// Retracing down from the high.
		fib.Level618 = high.Price - 0.618*span
	} else {
		fib.Level618 = low.Price + 0.618*span
	}
	return fib, true
}

func highestPivot(pivots []Pivot) (Pivot, bool) {
	if len(pivots) == 0 {
		return Pivot{}, false
	}
	best := pivots[0]
	for _, p := range pivots[1:] {
		if p.Price > best.Price {
			best = p
		}
	}
	return best, true
}

func lowestPivot(pivots []Pivot) (Pivot, bool) {
	if len(pivots) == 0 {
		return Pivot{}, false
	}
	best := pivots[0]
	for _, p := range pivots[1:] {
		if p.Price < best.Price {
			best = p
		}
	}
	return best, true
}

func extreme(series []float64, better func(a, b float64) bool) Pivot {
	best := Pivot{Index: 0, Price: series[0]}
	for i, v := range series {
		if better(v, best.Price) {
			best = Pivot{Index: i, Price: v}
		}
	}
	return best
}
