package engine

import (
	"fmt"
	"strings"

	"signal-backend/internal/domain"
)

const missingDataJustification = "Required indicator data is missing. The signal cannot be calculated. Wait until data is available."

func trendGateJustification(trend domain.TrendResult, cfg Config) string {
	if trend.ADXStrength == domain.ADXWeak {
		return fmt.Sprintf("Trend filter not met. ADX %.1f is below the %.0f minimum. No trade setup.",
			trend.ADX, cfg.Trend.ADXMinimum)
	}
	return "Trend filter not met. Moving average alignment and price position do not confirm a direction. No trade setup."
}

func forceWaitJustification(structure domain.StructureResult, risk domain.RiskResult, cfg Config) string {
	if structure.ForceWait {
		return fmt.Sprintf("Fragile structure detected. Price is %.2f ATR from the key Fibonacci level (%.2f) and too close to invalidation. Wait for a cleaner setup.",
			structure.DistanceInATR, structure.FibValue)
	}
	if risk.ATRPercent == 0 {
		return "Volatility data is unusable, so a stop-loss cannot be sized. Wait for valid ATR data."
	}
	return fmt.Sprintf("Extreme volatility detected. ATR at %.2f%% of price implies a %.2f%% stop-loss, above the %.2f%% limit. Wait for calmer conditions.",
		risk.ATRPercent, risk.StopLossRisk, cfg.Risk.MaxStopLoss)
}

// buildJustification assembles template sentences from a fully scored signal.
func buildJustification(sig domain.Signal, cfg Config) string {
	var parts []string

	context := "Bullish"
	if sig.Trend.Context == domain.ContextBearish {
		context = "Bearish"
	}
	strength := "moderate"
	if sig.Trend.ADXStrength == domain.ADXStrong {
		strength = "strong"
	}
	parts = append(parts, fmt.Sprintf("%s trend with %s moving average alignment. ADX %.1f shows %s directional momentum.",
		context, strings.ToLower(string(sig.Trend.MAStructure)), sig.Trend.ADX, strength))

	parts = append(parts, fmt.Sprintf("RSI %.1f sits in the %s zone for a %s context.",
		sig.Momentum.RSI, strings.ToLower(string(sig.Momentum.Zone)), strings.ToLower(context)))

	switch sig.Structure.FibCheck {
	case domain.FibValidSafe:
		parts = append(parts, fmt.Sprintf("Price is %.2f ATR from the key Fibonacci level, which leaves structural room.",
			sig.Structure.DistanceInATR))
	case domain.FibValidFragile:
		parts = append(parts, "Fibonacci check is valid but fragile.")
	default:
		parts = append(parts, "Fibonacci check failed with price on the wrong side of the key level.")
	}

	parts = append(parts, fmt.Sprintf("Volatility is %.2f%% (%s conditions).",
		sig.Risk.ATRPercent, strings.ToLower(string(sig.Risk.Assessment))))

	score := float64(sig.Score)
	switch {
	case score >= cfg.Thresholds.Action:
		parts = append(parts, fmt.Sprintf("Score %d/100 supports a %s call. All structural criteria align.", sig.Score, sig.Decision))
	case score >= cfg.Thresholds.Watchlist:
		parts = append(parts, fmt.Sprintf("Score %d/100 puts the coin on the watchlist. The setup exists but is not optimal, so monitor for improvement.", sig.Score))
	default:
		parts = append(parts, fmt.Sprintf("Score %d/100 is too low for an entry. Several criteria are below threshold.", sig.Score))
	}

	return strings.Join(parts, " ")
}
