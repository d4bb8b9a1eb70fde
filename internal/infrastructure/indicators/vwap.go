package indicators

// CalculateVWAP computes the cumulative volume weighted average price using the typical
// price (high+low+close)/3 of each candle.
func CalculateVWAP(highs, lows, closes, volumes []float64) []float64 {
	vwap := make([]float64, len(closes))

	cumulativeTPV := 0.0
	cumulativeVol := 0.0
	for i := range closes {
		typicalPrice := (highs[i] + lows[i] + closes[i]) / 3.0
		cumulativeTPV += typicalPrice * volumes[i]
		cumulativeVol += volumes[i]

		if cumulativeVol > 0 {
			vwap[i] = cumulativeTPV / cumulativeVol
		}
	}
	return vwap
}
