package indicators

import "math"

// CalculateADX computes Wilder's Average Directional Index. Directional movement and true
// range are smoothed over period bars, then DX is smoothed again over period bars, so the
// first value lands at index 2*period-1.
func CalculateADX(highs, lows, closes []float64, period int) []float64 {
	length := len(closes)
	adx := make([]float64, length)
	if period <= 0 || length < 2*period {
		return adx
	}

	trs := trueRanges(highs, lows, closes)
	plusDM := make([]float64, length)
	minusDM := make([]float64, length)
	for i := 1; i < length; i++ {
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	var smoothTR, smoothPlus, smoothMinus float64
	for i := 1; i <= period; i++ {
		smoothTR += trs[i]
		smoothPlus += plusDM[i]
		smoothMinus += minusDM[i]
	}

	dx := make([]float64, length)
	dx[period] = directionalIndex(smoothTR, smoothPlus, smoothMinus)
	for i := period + 1; i < length; i++ {
		smoothTR = smoothTR - smoothTR/float64(period) + trs[i]
		smoothPlus = smoothPlus - smoothPlus/float64(period) + plusDM[i]
		smoothMinus = smoothMinus - smoothMinus/float64(period) + minusDM[i]
		dx[i] = directionalIndex(smoothTR, smoothPlus, smoothMinus)
	}

	first := 2*period - 1
	sum := 0.0
	for i := period; i <= first; i++ {
		sum += dx[i]
	}
	adx[first] = sum / float64(period)
	for i := first + 1; i < length; i++ {
		adx[i] = (adx[i-1]*float64(period-1) + dx[i]) / float64(period)
	}
	return adx
}

func directionalIndex(tr, plusDM, minusDM float64) float64 {
	if tr == 0 {
		return 0
	}
	plusDI := 100 * plusDM / tr
	minusDI := 100 * minusDM / tr
	if plusDI+minusDI == 0 {
		return 0
	}
	return 100 * math.Abs(plusDI-minusDI) / (plusDI + minusDI)
}
