package engine

import (
	"math"

	"signal-backend/internal/domain"
)

const (
	perfectTrendFloor  = 0.75
	relaxedBaseShare   = 0.40
	relaxedStrongShare = 0.65
	relaxedCapMargin   = 2
)

// EvaluateTrend is the absolute gate of the pipeline. Only a result with Pass set allows the
// other evaluators to run.
func EvaluateTrend(ind domain.IndicatorRecord, price float64, cfg Config) domain.TrendResult {
	res := domain.TrendResult{
		Context:     domain.ContextNeutral,
		ADXStrength: domain.ADXWeak,
		MAStructure: domain.MAMessy,
		PriceVsMA:   domain.PriceAt,
	}
	if ind.ADX != nil {
		res.ADX = *ind.ADX
	}
	if ind.MA100 != nil {
		res.PriceVsMA = pricePosition(price, *ind.MA100)
	}
	if ind.MA50 == nil || ind.MA100 == nil || ind.MA200 == nil || ind.ADX == nil {
		return res
	}

	ma50, ma100, ma200, adx := *ind.MA50, *ind.MA100, *ind.MA200, *ind.ADX
	if adx < cfg.Trend.ADXMinimum {
		return res
	}

	res.ADXStrength = domain.ADXModerate
	if adx >= cfg.Trend.ADXStrong {
		res.ADXStrength = domain.ADXStrong
	}

	bullAligned := ma50 > ma100 && ma100 > ma200
	bearAligned := ma50 < ma100 && ma100 < ma200

	switch {
	case bullAligned && price > ma100:
		res.Context = domain.ContextBullish
		res.Pass = true
		res.MAStructure = domain.MAPerfect
		res.Points = perfectTrendPoints(adx, cfg)
		return res
	case bearAligned && price < ma100:
		res.Context = domain.ContextBearish
		res.Pass = true
		res.MAStructure = domain.MAPerfect
		res.Points = perfectTrendPoints(adx, cfg)
		return res
	}

	bull := reversalConditions(ind, price, cfg, 1)
	bear := reversalConditions(ind, price, cfg, -1)

	if cfg.Trend.RelaxedReversal && bull != bear {
		dir := 1.0
		res.Context = domain.ContextBullish
		if bear > bull {
			dir = -1
			res.Context = domain.ContextBearish
		}
		res.Pass = true
		res.MAStructure = domain.MAPartial
		res.Points = relaxedTrendPoints(ind, price, adx, dir, cfg)
		return res
	}

	if bullAligned || bearAligned || bull > 0 || bear > 0 {
		res.MAStructure = domain.MAPartial
	}
	return res
}

// perfectTrendPoints interpolates from 75% to 100% of the trend weight as ADX moves from
// the minimum to the strong level.
func perfectTrendPoints(adx float64, cfg Config) int {
	t := 1.0
	if span := cfg.Trend.ADXStrong - cfg.Trend.ADXMinimum; span > 0 {
		t = clamp((adx-cfg.Trend.ADXMinimum)/span, 0, 1)
	}
	return roundPoints(cfg.Weights.Trend * (perfectTrendFloor + (1-perfectTrendFloor)*t))
}

// reversalConditions counts the relaxed trend conditions that hold in direction dir
// (1 bullish, -1 bearish). Comparisons are made on dir-scaled values so one set of rules
// covers both sides.
func reversalConditions(ind domain.IndicatorRecord, price float64, cfg Config, dir float64) int {
	p := price * dir
	ma50, ma100, ma200 := *ind.MA50*dir, *ind.MA100*dir, *ind.MA200*dir

	n := 0
	if ind.FibValue != nil && p > ma50 && p > *ind.FibValue*dir {
		n++
	}
	if ma50 > ma100 && p > ma100 {
		n++
	}
	if ma50 > ma200 && p > ma50 {
		n++
	}
	if p > ma200 && *ind.ADX >= cfg.Trend.ReversalADX {
		n++
	}
	return n
}

func relaxedTrendPoints(ind domain.IndicatorRecord, price, adx, dir float64, cfg Config) int {
	w := cfg.Weights.Trend
	points := w * relaxedBaseShare
	if adx >= cfg.Trend.ADXStrong {
		points = w * relaxedStrongShare
	}

	p := price * dir
	if p > *ind.MA200*dir {
		points += cfg.Trend.BonusMA200
	}
	if ind.FibValue != nil && p > *ind.FibValue*dir {
		points += cfg.Trend.BonusFib
	}
	if *ind.MA50*dir > *ind.MA100*dir {
		points += cfg.Trend.BonusAlignment
	}
	return roundPoints(math.Min(points, w-relaxedCapMargin))
}

func pricePosition(price, level float64) domain.PricePosition {
	switch {
	case price > level:
		return domain.PriceAbove
	case price < level:
		return domain.PriceBelow
	}
	return domain.PriceAt
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func roundPoints(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
