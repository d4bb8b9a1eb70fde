package indicators

import "math"

// CalculateATR computes Wilder's Average True Range. The first value lands at index
// period-1.
func CalculateATR(highs, lows, closes []float64, period int) []float64 {
	length := len(closes)
	atr := make([]float64, length)
	if period <= 0 || length < period+1 {
		return atr
	}

	trs := trueRanges(highs, lows, closes)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr[period-1] = sum / float64(period)

	for i := period; i < length; i++ {
		atr[i] = (atr[i-1]*float64(period-1) + trs[i]) / float64(period)
	}
	return atr
}

// trueRanges maps each candle to its true range. The first candle has no previous close,
// so its range is high minus low.
func trueRanges(highs, lows, closes []float64) []float64 {
	trs := make([]float64, len(closes))
	if len(closes) == 0 {
		return trs
	}
	trs[0] = highs[0] - lows[0]
	for i := 1; i < len(closes); i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		trs[i] = math.Max(hl, math.Max(hc, lc))
	}
	return trs
}
