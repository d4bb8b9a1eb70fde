package engine

import (
	"math"

	"signal-backend/internal/domain"
)

const (
	overboughtRSI = 70
	oversoldRSI   = 30
)

// EvaluateMomentum scores RSI against the trend direction. Strong trends keep most of their
// points when RSI runs hot; otherwise points decay linearly away from the healthy band.
func EvaluateMomentum(rsi *float64, context domain.TrendContext, adx float64, cfg Config) domain.MomentumResult {
	if context == domain.ContextNeutral || rsi == nil {
		res := domain.MomentumResult{Zone: domain.ZoneWeak, Status: "No valid trend context"}
		if rsi != nil {
			res.RSI = *rsi
		}
		return res
	}

	r := *rsi
	m := cfg.Momentum
	w := cfg.Weights.Momentum
	res := domain.MomentumResult{RSI: r}

	if r >= m.HealthyLow && r <= m.HealthyHigh {
		res.Points = roundPoints(w)
		res.Zone = domain.ZoneHealthy
		if context == domain.ContextBullish {
			res.Status = "Healthy bullish momentum"
		} else {
			res.Status = "Healthy bearish momentum"
		}
		return res
	}

	strongTrend := adx >= cfg.Trend.ADXStrong

	if context == domain.ContextBullish {
		if r < m.HealthyLow {
			res.Zone = domain.ZoneWeak
			res.Status = "Momentum lags the bullish trend"
			return res
		}
		res.Points = extendedPoints(r-m.HealthyHigh, strongTrend, cfg)
		res.Zone = domain.ZoneStrong
		res.Status = "Strong bullish momentum"
		if strongTrend {
			res.Status = "Strong bullish momentum backed by trend strength"
		} else if r > overboughtRSI {
			res.Zone = domain.ZoneOverbought
			res.Status = "Overbought warning"
		}
		return res
	}

	if r > m.HealthyHigh {
		decay := 1 - (r-m.HealthyHigh)/nonZero(m.CounterSpan)
		res.Points = roundPoints(w * m.CounterShare * math.Max(0, decay))
		res.Zone = domain.ZoneWeak
		res.Status = "Momentum fights the bearish trend"
		return res
	}
	res.Points = extendedPoints(m.HealthyLow-r, strongTrend, cfg)
	res.Zone = domain.ZoneStrong
	res.Status = "Strong bearish momentum"
	if strongTrend {
		res.Status = "Strong bearish momentum backed by trend strength"
	} else if r < oversoldRSI {
		res.Zone = domain.ZoneOversold
		res.Status = "Oversold warning"
	}
	return res
}

// extendedPoints scores RSI that has left the healthy band in the trend's direction.
// excess is the distance past the band edge.
func extendedPoints(excess float64, strongTrend bool, cfg Config) int {
	m := cfg.Momentum
	w := cfg.Weights.Momentum
	if strongTrend {
		return roundPoints(w * m.StrongTrendShare)
	}
	start := w * m.ExtendedShare
	floor := math.Min(m.Floor, start)
	points := start - (start-floor)*math.Min(1, excess/nonZero(m.DecaySpan))
	return roundPoints(math.Max(floor, points))
}

func nonZero(v float64) float64 {
	if v == 0 {
		return math.SmallestNonzeroFloat64
	}
	return v
}
