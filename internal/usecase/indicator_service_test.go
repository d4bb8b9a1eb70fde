package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/infrastructure/binance"
	"signal-backend/internal/repository"
)

type fakeKlines struct {
	candles []binance.Candle
	err     error
	calls   int
}

func (k *fakeKlines) GetKlines(context.Context, string, string, int) ([]binance.Candle, error) {
	k.calls++
	return k.candles, k.err
}

func risingCandles(n int, start time.Time, step time.Duration) []binance.Candle {
	candles := make([]binance.Candle, n)
	for i := range candles {
		c := 100 + float64(i)
		candles[i] = binance.Candle{OpenTime: start.Add(time.Duration(i) * step), Open: c, High: c + 1, Low: c - 1, Close: c, Volume: 10}
	}
	return candles
}

func TestComputeSwing(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ind := ComputeSwing("BTCUSDT", risingCandles(250, now.Add(-1000*time.Hour), 4*time.Hour), now)

	if !ind.HasRequired() {
		t.Fatalf("missing fields: %+v", ind.IndicatorRecord)
	}
	if !(*ind.MA50 > *ind.MA100 && *ind.MA100 > *ind.MA200) {
		t.Errorf("rising series should stack MAs: %v %v %v", *ind.MA50, *ind.MA100, *ind.MA200)
	}
	if *ind.RSI != 100 {
		t.Errorf("RSI = %v, want 100", *ind.RSI)
	}
	if ind.FibTrend != "UP" || *ind.FibEndPrice <= *ind.FibStartPrice {
		t.Errorf("fib = %s %v..%v", ind.FibTrend, *ind.FibStartPrice, *ind.FibEndPrice)
	}
	if !ind.UpdatedAt.Equal(now) {
		t.Errorf("UpdatedAt = %v", ind.UpdatedAt)
	}

	short := ComputeSwing("BTCUSDT", risingCandles(60, now, 4*time.Hour), now)
	if short.MA200 != nil || short.MA100 != nil || short.MA50 == nil {
		t.Errorf("short history: ma50=%v ma100=%v ma200=%v", short.MA50, short.MA100, short.MA200)
	}
}

func TestComputeScalp_SessionAnchors(t *testing.T) {
	day0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]binance.Candle, 192)
	for i := range candles {
		candles[i] = binance.Candle{OpenTime: day0.Add(time.Duration(i) * 15 * time.Minute), High: 101, Low: 99, Close: 100, Volume: 5}
	}

	ind := ComputeScalp("BTCUSDT", candles, day0.Add(48*time.Hour))
	if ind.VWAP == nil || math.Abs(*ind.VWAP-100) > 1e-9 {
		t.Errorf("VWAP = %v", ind.VWAP)
	}
	if ind.Pivot.P == nil || math.Abs(*ind.Pivot.P-100) > 1e-9 || math.Abs(*ind.Pivot.R1-101) > 1e-9 || math.Abs(*ind.Pivot.S1-99) > 1e-9 {
		t.Errorf("pivots = %+v", ind.Pivot)
	}
	if ind.BBands.Middle == nil || *ind.BBands.Middle != 100 {
		t.Errorf("bbands = %+v", ind.BBands)
	}

	oneDay := ComputeScalp("BTCUSDT", candles[96:], day0.Add(48*time.Hour))
	if oneDay.Pivot.P != nil {
		t.Error("pivots without a previous day should be empty")
	}
}

func newIndicatorFixture(klines *fakeKlines) (*IndicatorService, *repository.InMemoryIndicatorRepository, *fakeClock) {
	repo := repository.NewInMemoryIndicatorRepository()
	clock := newFakeClock()
	svc := NewIndicatorService(klines, repo, IndicatorServiceConfig{
		SwingInterval: "4h",
		ScalpInterval: "15m",
		KlineLimit:    300,
		Freshness:     time.Minute,
	}, clock, zerolog.Nop())
	return svc, repo, clock
}

func TestIndicatorService_ReusesFreshSnapshot(t *testing.T) {
	klines := &fakeKlines{}
	svc, repo, clock := newIndicatorFixture(klines)
	ctx := context.Background()

	stored := bullishSwing("BTCUSDT")
	stored.UpdatedAt = clock.Now().Add(-30 * time.Second)
	repo.SaveSwing(ctx, stored)

	got, err := svc.Swing(ctx, "btcusdt")
	if err != nil {
		t.Fatal(err)
	}
	if klines.calls != 0 {
		t.Errorf("fresh snapshot recomputed (%d kline calls)", klines.calls)
	}
	if *got.ADX != 45 {
		t.Errorf("ADX = %v", *got.ADX)
	}
}

func TestIndicatorService_RecomputesStaleSnapshot(t *testing.T) {
	klines := &fakeKlines{candles: risingCandles(250, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 4*time.Hour)}
	svc, repo, clock := newIndicatorFixture(klines)
	ctx := context.Background()

	stored := bullishSwing("BTCUSDT")
	stored.UpdatedAt = clock.Now().Add(-5 * time.Minute)
	repo.SaveSwing(ctx, stored)

	got, err := svc.Swing(ctx, "BTCUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if klines.calls != 1 {
		t.Fatalf("kline calls = %d, want 1", klines.calls)
	}
	if !got.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("UpdatedAt = %v", got.UpdatedAt)
	}
	saved, _ := repo.GetSwing(ctx, "BTCUSDT")
	if !saved.UpdatedAt.Equal(clock.Now()) {
		t.Error("recomputed snapshot was not stored")
	}

	// Second read inside the freshness window hits the in-process cache.
	if _, err := svc.Swing(ctx, "BTCUSDT"); err != nil {
		t.Fatal(err)
	}
	if klines.calls != 1 {
		t.Errorf("kline calls = %d after cached read", klines.calls)
	}
}

func TestIndicatorService_KlineFailure(t *testing.T) {
	klines := &fakeKlines{err: errors.New("binance down")}
	svc, repo, clock := newIndicatorFixture(klines)
	ctx := context.Background()

	if _, err := svc.Swing(ctx, "BTCUSDT"); err == nil {
		t.Fatal("expected error without stored snapshot")
	}

	stored := bullishSwing("BTCUSDT")
	stored.UpdatedAt = clock.Now().Add(-time.Hour)
	repo.SaveSwing(ctx, stored)

	got, err := svc.Swing(ctx, "BTCUSDT")
	if err != nil {
		t.Fatalf("expected stale snapshot, got %v", err)
	}
	if !got.UpdatedAt.Equal(stored.UpdatedAt) {
		t.Error("stale snapshot not returned")
	}

	if _, err := svc.Scalp(ctx, "BTCUSDT"); err == nil {
		t.Error("expected scalp error without stored snapshot")
	}
}

func TestIndicatorService_SweepDropsExpiredSnapshots(t *testing.T) {
	svc, repo, clock := newIndicatorFixture(&fakeKlines{})
	ctx := context.Background()

	stored := bullishSwing("BTCUSDT")
	stored.UpdatedAt = clock.Now()
	repo.SaveSwing(ctx, stored)
	if _, err := svc.Swing(ctx, "BTCUSDT"); err != nil {
		t.Fatal(err)
	}

	if removed := svc.sweep(); removed != 0 {
		t.Errorf("fresh snapshot swept (%d removed)", removed)
	}

	clock.Advance(2 * time.Minute)
	if removed := svc.sweep(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := svc.swing.GetStale("BTCUSDT"); ok {
		t.Error("expired snapshot still cached")
	}
}
