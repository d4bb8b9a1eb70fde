// Package engine turns an indicator snapshot and a price into a trade signal. Every function
// is pure: the same inputs always produce the same Signal, and nothing here performs I/O.
package engine

import (
	"math"

	"signal-backend/internal/domain"
)

// CalculateSignal scores ind for coin with DefaultConfig.
func CalculateSignal(ind domain.IndicatorRecord, coin domain.Coin) domain.Signal {
	return CalculateSignalWithConfig(ind, coin, DefaultConfig())
}

// CalculateSignalWithConfig runs the full pipeline: missing-data check, trend gate, the
// momentum, structure and risk evaluators, force-wait overrides, then classification.
// The config is trusted; validate it when it is loaded.
func CalculateSignalWithConfig(ind domain.IndicatorRecord, coin domain.Coin, cfg Config) domain.Signal {
	price := coin.CurrentPrice
	sig := domain.Signal{Coin: coin, Decision: domain.DecisionWait}

	if !ind.HasRequired() {
		sig.Trend = domain.TrendResult{
			Context:     domain.ContextNeutral,
			ADX:         valueOr(ind.ADX),
			ADXStrength: domain.ADXWeak,
			MAStructure: domain.MAMessy,
			PriceVsMA:   domain.PriceAt,
		}
		sig.Momentum = domain.MomentumResult{RSI: valueOr(ind.RSI), Zone: domain.ZoneWeak, Status: "Insufficient data"}
		sig.Structure = domain.StructureResult{FibCheck: domain.FibInvalid, FibValue: valueOr(ind.FibValue)}
		sig.Risk = domain.RiskResult{Assessment: domain.RiskExtreme}
		sig.Justification = missingDataJustification
		return sig
	}

	trend := EvaluateTrend(ind, price, cfg)
	sig.Trend = trend
	if !trend.Pass {
		sig.Momentum = domain.MomentumResult{RSI: *ind.RSI, Zone: domain.ZoneWeak, Status: "No valid trend"}
		sig.Structure = domain.StructureResult{FibCheck: domain.FibInvalid, FibValue: *ind.FibValue}
		sig.Risk = domain.RiskResult{Assessment: domain.RiskSafe}
		sig.Justification = trendGateJustification(trend, cfg)
		return sig
	}

	sig.Momentum = EvaluateMomentum(ind.RSI, trend.Context, trend.ADX, cfg)
	sig.Structure = EvaluateStructure(price, ind.FibValue, ind.FibEndPrice, ind.FibStartPrice, ind.ATR, trend.Context, cfg)
	sig.Risk = EvaluateRisk(ind.ATR, price, cfg)

	if sig.Structure.ForceWait || sig.Risk.ForceWait {
		sig.Justification = forceWaitJustification(sig.Structure, sig.Risk, cfg)
		return sig
	}

	total := trend.Points + sig.Momentum.Points + sig.Structure.Points + sig.Risk.Points
	sig.Score = min(max(total, 0), 100)
	sig.ShowInUI = float64(sig.Score) >= cfg.Thresholds.Watchlist

	if float64(sig.Score) >= cfg.Thresholds.Action {
		sig.Decision = domain.DecisionLong
		if trend.Context == domain.ContextBearish {
			sig.Decision = domain.DecisionShort
		}
		sig.TradeLevels = tradeLevels(sig.Decision, price, *ind.ATR, ind.FibStartPrice, ind.FibEndPrice, cfg)
	}

	sig.Justification = buildJustification(sig, cfg)
	return sig
}

// tradeLevels uses a fixed ATR stop. The target is the swing bound when known, otherwise
// an ATR multiple.
func tradeLevels(decision domain.Decision, price, atr float64, fibStart, fibEnd *float64, cfg Config) *domain.TradeLevels {
	stop := cfg.Levels.StopLossATR * atr
	target := cfg.Levels.TakeProfitATR * atr

	if decision == domain.DecisionLong {
		tp := price + target
		if fibEnd != nil {
			tp = *fibEnd
		}
		return &domain.TradeLevels{
			EntryPrice: price,
			StopLoss:   math.Max(0, price-stop),
			TakeProfit: math.Max(0, tp),
		}
	}

	tp := price - target
	if fibStart != nil {
		tp = *fibStart
	}
	return &domain.TradeLevels{
		EntryPrice: price,
		StopLoss:   price + stop,
		TakeProfit: math.Max(0, tp),
	}
}

func valueOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
