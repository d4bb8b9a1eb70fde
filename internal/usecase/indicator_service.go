package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/binance"
	"signal-backend/internal/infrastructure/cache"
	"signal-backend/internal/infrastructure/indicators"
)

// KlineSource supplies candles, oldest first.
type KlineSource interface {
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]binance.Candle, error)
}

type IndicatorServiceConfig struct {
	SwingInterval string
	ScalpInterval string
	KlineLimit    int
	// Freshness is how long a stored snapshot is reused before it is recomputed.
	Freshness time.Duration
}

// IndicatorService returns indicator snapshots, reusing stored ones while they are fresh
// and recomputing them from klines otherwise.
type IndicatorService struct {
	klines KlineSource
	repo   domain.IndicatorRepository
	cfg    IndicatorServiceConfig
	clock  cache.Clock
	swing  *cache.TTL[domain.SwingIndicators]
	scalp  *cache.TTL[domain.ScalpIndicators]
	logger zerolog.Logger
}

func NewIndicatorService(klines KlineSource, repo domain.IndicatorRepository, cfg IndicatorServiceConfig, clock cache.Clock, logger zerolog.Logger) *IndicatorService {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &IndicatorService{
		klines: klines,
		repo:   repo,
		cfg:    cfg,
		clock:  clock,
		swing:  cache.NewTTL[domain.SwingIndicators](cfg.Freshness, clock),
		scalp:  cache.NewTTL[domain.ScalpIndicators](cfg.Freshness, clock),
		logger: logger.With().Str("component", "indicators").Logger(),
	}
}

// Swing returns the swing snapshot for symbol. When recomputation fails, a stored
// snapshot of any age is returned instead of an error.
func (s *IndicatorService) Swing(ctx context.Context, symbol string) (*domain.SwingIndicators, error) {
	symbol = strings.ToUpper(symbol)
	if ind, ok := s.swing.Get(symbol); ok {
		return &ind, nil
	}

	stored, err := s.repo.GetSwing(ctx, symbol)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("ignoring stored swing indicators")
		stored = nil
	}
	now := s.clock.Now()
	if stored != nil && now.Sub(stored.UpdatedAt) < s.cfg.Freshness {
		s.swing.Set(symbol, *stored)
		return stored, nil
	}

	candles, err := s.klines.GetKlines(ctx, symbol, s.cfg.SwingInterval, s.cfg.KlineLimit)
	if err != nil {
		if stored != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("klines unavailable, using stale swing indicators")
			return stored, nil
		}
		return nil, fmt.Errorf("swing klines for %s: %w", symbol, err)
	}

	ind := ComputeSwing(symbol, candles, now)
	if err := s.repo.SaveSwing(ctx, &ind); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to store swing indicators")
	}
	s.swing.Set(symbol, ind)
	return &ind, nil
}

// Scalp mirrors Swing for the intraday snapshot.
func (s *IndicatorService) Scalp(ctx context.Context, symbol string) (*domain.ScalpIndicators, error) {
	symbol = strings.ToUpper(symbol)
	if ind, ok := s.scalp.Get(symbol); ok {
		return &ind, nil
	}

	stored, err := s.repo.GetScalp(ctx, symbol)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("ignoring stored scalp indicators")
		stored = nil
	}
	now := s.clock.Now()
	if stored != nil && now.Sub(stored.UpdatedAt) < s.cfg.Freshness {
		s.scalp.Set(symbol, *stored)
		return stored, nil
	}

	candles, err := s.klines.GetKlines(ctx, symbol, s.cfg.ScalpInterval, s.cfg.KlineLimit)
	if err != nil {
		if stored != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("klines unavailable, using stale scalp indicators")
			return stored, nil
		}
		return nil, fmt.Errorf("scalp klines for %s: %w", symbol, err)
	}

	ind := ComputeScalp(symbol, candles, now)
	if err := s.repo.SaveScalp(ctx, &ind); err != nil {
		s.logger.Error().Err(err).Str("symbol", symbol).Msg("failed to store scalp indicators")
	}
	s.scalp.Set(symbol, ind)
	return &ind, nil
}

// SweepCaches drops cached snapshots past the freshness window every interval until ctx
// ends. Those entries are never served again; the stored rows remain the stale fallback.
func (s *IndicatorService) SweepCaches(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *IndicatorService) sweep() int {
	removed := s.swing.Sweep(s.cfg.Freshness) + s.scalp.Sweep(s.cfg.Freshness)
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("swept indicator cache")
	}
	return removed
}

const (
	indicatorPeriod = 14
	fibLookback     = 100
)

func splitCandles(candles []binance.Candle) (highs, lows, closes, volumes []float64) {
	n := len(candles)
	highs, lows, closes, volumes = make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, c := range candles {
		highs[i], lows[i], closes[i], volumes[i] = c.High, c.Low, c.Close, c.Volume
	}
	return
}

// ComputeSwing derives the swing snapshot. Indicators without enough history stay nil,
// which the engine treats as missing data.
func ComputeSwing(symbol string, candles []binance.Candle, now time.Time) domain.SwingIndicators {
	highs, lows, closes, _ := splitCandles(candles)

	ind := domain.SwingIndicators{
		Symbol: symbol,
		IndicatorRecord: domain.IndicatorRecord{
			MA50:  indicators.Last(indicators.CalculateSMA(closes, 50), 50),
			MA100: indicators.Last(indicators.CalculateSMA(closes, 100), 100),
			MA200: indicators.Last(indicators.CalculateSMA(closes, 200), 200),
			ADX:   indicators.Last(indicators.CalculateADX(highs, lows, closes, indicatorPeriod), 2*indicatorPeriod),
			RSI:   indicators.Last(indicators.CalculateRSI(closes, indicatorPeriod), indicatorPeriod+1),
			ATR:   indicators.Last(indicators.CalculateATR(highs, lows, closes, indicatorPeriod), indicatorPeriod+1),
		},
		MA:        indicators.Last(indicators.CalculateEMA(closes, 20), 20),
		UpdatedAt: now,
	}

	if fib, ok := indicators.CalculateFibRetracement(highs, lows, fibLookback); ok {
		ind.FibValue = domain.Float(fib.Level618)
		ind.FibStartPrice = domain.Float(fib.Start)
		ind.FibEndPrice = domain.Float(fib.End)
		ind.FibTrend = "DOWN"
		if fib.TrendUp {
			ind.FibTrend = "UP"
		}
	}
	return ind
}

// ComputeScalp derives the intraday snapshot. VWAP is anchored at the start of the last
// candle's UTC day and the floor pivots come from the previous UTC day.
func ComputeScalp(symbol string, candles []binance.Candle, now time.Time) domain.ScalpIndicators {
	highs, lows, closes, _ := splitCandles(candles)

	ind := domain.ScalpIndicators{
		Symbol:    symbol,
		ATR:       indicators.Last(indicators.CalculateATR(highs, lows, closes, indicatorPeriod), indicatorPeriod+1),
		RSI:       indicators.Last(indicators.CalculateRSI(closes, indicatorPeriod), indicatorPeriod+1),
		UpdatedAt: now,
	}

	bands := indicators.CalculateBollingerBands(closes, 20, 2)
	ind.BBands = domain.BollingerBands{
		Upper:  indicators.Last(bands.Upper, 20),
		Middle: indicators.Last(bands.Middle, 20),
		Lower:  indicators.Last(bands.Lower, 20),
	}

	if len(candles) == 0 {
		return ind
	}
	today := candles[len(candles)-1].OpenTime.UTC().Truncate(24 * time.Hour)
	yesterday := today.Add(-24 * time.Hour)

	var session, previous []binance.Candle
	for _, c := range candles {
		switch t := c.OpenTime.UTC(); {
		case !t.Before(today):
			session = append(session, c)
		case !t.Before(yesterday):
			previous = append(previous, c)
		}
	}

	sh, sl, sc, sv := splitCandles(session)
	ind.VWAP = indicators.Last(indicators.CalculateVWAP(sh, sl, sc, sv), 1)

	if len(previous) > 0 {
		high, low := previous[0].High, previous[0].Low
		for _, c := range previous[1:] {
			high = max(high, c.High)
			low = min(low, c.Low)
		}
		p := indicators.ClassicPivots(high, low, previous[len(previous)-1].Close)
		ind.Pivot = domain.PivotLevels{
			P:  domain.Float(p.P),
			R1: domain.Float(p.R1), R2: domain.Float(p.R2), R3: domain.Float(p.R3),
			S1: domain.Float(p.S1), S2: domain.Float(p.S2), S3: domain.Float(p.S3),
		}
	}
	return ind
}
