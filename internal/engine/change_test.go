package engine

import (
	"testing"

	"signal-backend/internal/domain"
)

func signalWith(decision domain.Decision, score int) domain.Signal {
	return domain.Signal{Coin: domain.Coin{Symbol: "ethusdt"}, Decision: decision, Score: score}
}

func TestCompareSignals_NewSignal(t *testing.T) {
	th := DefaultConfig().Thresholds
	tests := []struct {
		score   int
		crossed domain.Threshold
	}{
		{60, domain.ThresholdWatchlist},
		{75, domain.ThresholdAction},
		{49, domain.ThresholdNone},
	}
	for _, tt := range tests {
		got := CompareSignals(nil, signalWith(domain.DecisionWait, tt.score), th)
		if got.ChangeType != domain.ChangeNewSignal {
			t.Errorf("score %d: change type = %s, want NEW_SIGNAL", tt.score, got.ChangeType)
		}
		if got.CrossedThreshold != tt.crossed {
			t.Errorf("score %d: crossed = %q, want %q", tt.score, got.CrossedThreshold, tt.crossed)
		}
		if got.NewScore != tt.score || got.OldScore != nil {
			t.Errorf("score %d: got new=%d old=%v", tt.score, got.NewScore, got.OldScore)
		}
		if got.CoinSymbol != "ETHUSDT" {
			t.Errorf("coin symbol = %q", got.CoinSymbol)
		}
	}
}

func TestCompareSignals_Transitions(t *testing.T) {
	th := DefaultConfig().Thresholds
	tests := []struct {
		name    string
		prev    domain.Signal
		next    domain.Signal
		change  domain.ChangeType
		crossed domain.Threshold
		notify  bool
	}{
		{"wait to long", signalWith(domain.DecisionWait, 40), signalWith(domain.DecisionLong, 82), domain.ChangeDecision, domain.ThresholdNone, true},
		{"wait to short", signalWith(domain.DecisionWait, 70), signalWith(domain.DecisionShort, 78), domain.ChangeDecision, domain.ThresholdNone, true},
		{"long to wait", signalWith(domain.DecisionLong, 80), signalWith(domain.DecisionWait, 40), domain.ChangeDecision, domain.ThresholdNone, false},
		{"crosses watchlist", signalWith(domain.DecisionWait, 45), signalWith(domain.DecisionWait, 55), domain.ChangeScoreIncrease, domain.ThresholdWatchlist, false},
		{"increase inside tier", signalWith(domain.DecisionWait, 60), signalWith(domain.DecisionWait, 62), domain.ChangeScoreIncrease, domain.ThresholdNone, false},
		{"decrease", signalWith(domain.DecisionWait, 62), signalWith(domain.DecisionWait, 58), domain.ChangeScoreDecrease, domain.ThresholdNone, false},
		{"drops below watchlist", signalWith(domain.DecisionWait, 55), signalWith(domain.DecisionWait, 45), domain.ChangeScoreDecrease, domain.ThresholdNone, false},
		{"unchanged", signalWith(domain.DecisionLong, 80), signalWith(domain.DecisionLong, 80), domain.ChangeNone, domain.ThresholdNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.prev
			got := CompareSignals(&prev, tt.next, th)
			if got.ChangeType != tt.change {
				t.Errorf("change type = %s, want %s", got.ChangeType, tt.change)
			}
			if got.CrossedThreshold != tt.crossed {
				t.Errorf("crossed = %q, want %q", got.CrossedThreshold, tt.crossed)
			}
			if got.OldScore == nil || *got.OldScore != tt.prev.Score {
				t.Errorf("old score = %v, want %d", got.OldScore, tt.prev.Score)
			}
			if ShouldNotify(got) != tt.notify {
				t.Errorf("ShouldNotify = %v, want %v", !tt.notify, tt.notify)
			}
		})
	}
}

func TestCompareSignals_DecisionChangeCarriesOldDecision(t *testing.T) {
	prev := signalWith(domain.DecisionWait, 40)
	got := CompareSignals(&prev, signalWith(domain.DecisionLong, 82), DefaultConfig().Thresholds)

	if got.OldDecision == nil || *got.OldDecision != domain.DecisionWait {
		t.Fatalf("old decision = %v, want WAIT", got.OldDecision)
	}
	if got.NewDecision != domain.DecisionLong || got.NewScore != 82 {
		t.Errorf("new = %s/%d, want LONG/82", got.NewDecision, got.NewScore)
	}
}

func TestShouldNotify_NewSignal(t *testing.T) {
	th := DefaultConfig().Thresholds
	if ShouldNotify(CompareSignals(nil, signalWith(domain.DecisionWait, 60), th)) {
		t.Error("new WAIT signal should not notify")
	}
	if !ShouldNotify(CompareSignals(nil, signalWith(domain.DecisionLong, 80), th)) {
		t.Error("new LONG signal should notify")
	}
}
