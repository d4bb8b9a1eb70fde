package indicators

type Pivot struct {
	Index int
	Price float64
}

// FindPivotLows returns the swing lows: bars strictly lower than leftBars bars before and
// rightBars bars after them.
func FindPivotLows(lows []float64, leftBars, rightBars int) []Pivot {
	return findPivots(lows, leftBars, rightBars, func(candidate, neighbour float64) bool {
		return candidate < neighbour
	})
}

// FindPivotHighs returns the swing highs, mirroring FindPivotLows.
func FindPivotHighs(highs []float64, leftBars, rightBars int) []Pivot {
	return findPivots(highs, leftBars, rightBars, func(candidate, neighbour float64) bool {
		return candidate > neighbour
	})
}

func findPivots(series []float64, leftBars, rightBars int, beats func(candidate, neighbour float64) bool) []Pivot {
	var pivots []Pivot

	for i := leftBars; i < len(series)-rightBars; i++ {
		current := series[i]
		isPivot := true
		for j := i - leftBars; j <= i+rightBars && isPivot; j++ {
			if j != i && !beats(current, series[j]) {
				isPivot = false
			}
		}
		if isPivot {
			pivots = append(pivots, Pivot{Index: i, Price: current})
		}
	}
	return pivots
}

// PivotPoints are the classic floor-trader levels derived from one completed period.
type PivotPoints struct {
	P  float64
	R1 float64
	R2 float64
	R3 float64
	S1 float64
	S2 float64
	S3 float64
}

// ClassicPivots derives floor pivots from the previous period's high, low and close.
func ClassicPivots(high, low, close float64) PivotPoints {
	p := (high + low + close) / 3
	r := high - low
	return PivotPoints{
		P:  p,
		R1: 2*p - low,
		R2: p + r,
		R3: high + 2*(p-low),
		S1: 2*p - high,
		S2: p - r,
		S3: low - 2*(high-p),
	}
}
