package engine

import (
	"math"

	"signal-backend/internal/domain"
)

const wrongSideShare = 0.5

// EvaluateStructure checks price against the 61.8% retracement level, measuring distance in
// ATR units. A right-side price closer than the safe zone sets ForceWait.
func EvaluateStructure(price float64, fib618, fibEnd, fibStart, atr *float64, context domain.TrendContext, cfg Config) domain.StructureResult {
	res := domain.StructureResult{FibCheck: domain.FibInvalid}
	if fib618 != nil {
		res.FibValue = *fib618
	}
	if context == domain.ContextNeutral || fib618 == nil || atr == nil || *atr <= 0 {
		return res
	}

	fib := *fib618
	w := cfg.Weights.Structure
	sc := cfg.Structure

	res.Distance = math.Abs(price - fib)
	res.DistanceInATR = res.Distance / *atr

	dir := 1.0
	target := fibEnd
	if context == domain.ContextBearish {
		dir = -1
		target = fibStart
	}

	if (price-fib)*dir < 0 {
		if sc.FibToleranceATR > 0 && res.DistanceInATR <= sc.FibToleranceATR {
			res.Points = roundPoints(w * wrongSideShare * (1 - res.DistanceInATR/sc.FibToleranceATR))
		}
		return res
	}

	fragile := res.DistanceInATR < sc.SafeZoneATR
	res.FibCheck = domain.FibValidSafe
	if fragile {
		res.FibCheck = domain.FibValidFragile
		res.ForceWait = true
	}

	// The swing target is only usable when it lies beyond the fib level on the trade side.
	if sc.GradedDecay && target != nil && (*target-fib)*dir > 0 {
		ratio := (price - fib) / (*target - fib)
		if ratio < 1 {
			res.Points = roundPoints(w * (1 - ratio))
		}
		return res
	}

	if !fragile {
		res.Points = roundPoints(w)
	}
	return res
}
