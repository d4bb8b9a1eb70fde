package indicators

import "math"

type BollingerBands struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// CalculateBollingerBands computes bands at multiplier population standard deviations
// around the simple moving average.
func CalculateBollingerBands(closes []float64, period int, multiplier float64) BollingerBands {
	length := len(closes)
	bands := BollingerBands{
		Upper:  make([]float64, length),
		Middle: CalculateSMA(closes, period),
		Lower:  make([]float64, length),
	}
	if period <= 0 || length < period {
		return bands
	}

	for i := period - 1; i < length; i++ {
		ma := bands.Middle[i]

		sumSqDiff := 0.0
		for j := i - period + 1; j <= i; j++ {
			diff := closes[j] - ma
			sumSqDiff += diff * diff
		}
		stdDev := math.Sqrt(sumSqDiff / float64(period))

		bands.Upper[i] = ma + multiplier*stdDev
		bands.Lower[i] = ma - multiplier*stdDev
	}
	return bands
}
