package indicators

// CalculateEMA computes the exponential moving average, seeded with the simple average of
// the first period values. Indexes before period-1 are zero.
func CalculateEMA(data []float64, period int) []float64 {
	ema := make([]float64, len(data))
	if period <= 0 || len(data) < period {
		return ema
	}

	k := 2.0 / (float64(period) + 1.0)

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += data[i]
	}
	ema[period-1] = sum / float64(period)

	for i := period; i < len(data); i++ {
		ema[i] = data[i]*k + ema[i-1]*(1-k)
	}
	return ema
}

// CalculateSMA computes a rolling simple moving average. Indexes before period-1 are zero.
func CalculateSMA(data []float64, period int) []float64 {
	sma := make([]float64, len(data))
	if period <= 0 || len(data) < period {
		return sma
	}

	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= period {
			sum -= data[i-period]
		}
		if i >= period-1 {
			sma[i] = sum / float64(period)
		}
	}
	return sma
}

// Last returns the final value of series, or nil when the series is too short to have
// produced one.
func Last(series []float64, period int) *float64 {
	if period <= 0 || len(series) < period {
		return nil
	}
	v := series[len(series)-1]
	return &v
}
