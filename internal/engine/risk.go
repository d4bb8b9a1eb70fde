package engine

import "signal-backend/internal/domain"

// EvaluateRisk classifies volatility as ATR percent of price. Without usable ATR or price a
// position cannot be sized, so the result forces WAIT.
func EvaluateRisk(atr *float64, price float64, cfg Config) domain.RiskResult {
	if atr == nil || *atr <= 0 || price <= 0 {
		return domain.RiskResult{Assessment: domain.RiskExtreme, ForceWait: true}
	}

	res := domain.RiskResult{
		ATRPercent:   *atr / price * 100,
		StopLossRisk: cfg.Levels.StopLossATR * *atr / price * 100,
	}

	switch {
	case res.ATRPercent > cfg.Risk.VolatilityExtreme:
		res.Assessment = domain.RiskExtreme
		res.ForceWait = res.StopLossRisk > cfg.Risk.MaxStopLoss
	case res.ATRPercent >= cfg.Risk.ElevatedPercent:
		res.Assessment = domain.RiskElevated
		res.Points = roundPoints(cfg.Weights.Risk * 0.5)
	default:
		// Squeeze conditions land here too and are treated as safe.
		res.Assessment = domain.RiskSafe
		res.Points = roundPoints(cfg.Weights.Risk)
	}
	return res
}
