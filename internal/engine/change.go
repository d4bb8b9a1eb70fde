package engine

import (
	"strings"

	"signal-backend/internal/domain"
)

// CompareSignals classifies how next differs from previous. A nil previous means the coin
// had no stored signal.
func CompareSignals(previous *domain.Signal, next domain.Signal, th Thresholds) domain.SignalChange {
	change := domain.SignalChange{
		CoinSymbol:  strings.ToUpper(next.Coin.Symbol),
		ChangeType:  domain.ChangeNone,
		NewScore:    next.Score,
		NewDecision: next.Decision,
	}

	if previous == nil {
		change.ChangeType = domain.ChangeNewSignal
		change.CrossedThreshold = thresholdTier(next.Score, th)
		return change
	}

	oldScore := previous.Score
	oldDecision := previous.Decision
	change.OldScore = &oldScore

	if previous.Decision != next.Decision {
		change.ChangeType = domain.ChangeDecision
		change.OldDecision = &oldDecision
		return change
	}

	oldTier := thresholdTier(previous.Score, th)
	newTier := thresholdTier(next.Score, th)
	switch {
	case tierRank(newTier) > tierRank(oldTier):
		change.ChangeType = domain.ChangeScoreIncrease
		change.CrossedThreshold = newTier
	case next.Score > previous.Score:
		change.ChangeType = domain.ChangeScoreIncrease
	case next.Score < previous.Score:
		change.ChangeType = domain.ChangeScoreDecrease
	}
	return change
}

// ShouldNotify applies the notification policy: only a new signal or a decision change that
// lands on LONG or SHORT is worth a message.
func ShouldNotify(change domain.SignalChange) bool {
	if change.ChangeType != domain.ChangeNewSignal && change.ChangeType != domain.ChangeDecision {
		return false
	}
	return change.NewDecision.IsTrade()
}

func thresholdTier(score int, th Thresholds) domain.Threshold {
	switch s := float64(score); {
	case s >= th.Action:
		return domain.ThresholdAction
	case s >= th.Watchlist:
		return domain.ThresholdWatchlist
	}
	return domain.ThresholdNone
}

func tierRank(t domain.Threshold) int {
	switch t {
	case domain.ThresholdAction:
		return 2
	case domain.ThresholdWatchlist:
		return 1
	}
	return 0
}
