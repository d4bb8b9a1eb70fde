package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/engine"
	"signal-backend/internal/infrastructure/cache"
)

// ErrJobInProgress is returned when a run is requested while another one is still going.
var ErrJobInProgress = errors.New("signal job already in progress")

// SwingSource returns the swing indicators the engine scores.
type SwingSource interface {
	Swing(ctx context.Context, symbol string) (*domain.SwingIndicators, error)
}

// Notifier delivers a notifiable change and reports whether anything was sent.
type Notifier interface {
	Notify(ctx context.Context, sig domain.Signal, change domain.SignalChange) bool
}

// SymbolLister returns the coins a run should evaluate.
type SymbolLister func(ctx context.Context) ([]string, error)

// pricePrimer is implemented by price sources that can load every price in one call.
type pricePrimer interface {
	Prime(ctx context.Context) (int, error)
}

type JobConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	Workers    int
	RunOnStart bool
}

// JobReport summarizes one run.
type JobReport struct {
	Processed       int           `json:"processed"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	AlertCandidates int           `json:"alertCandidates"`
	Notified        int           `json:"notified"`
	Errors          []string      `json:"errors"`
	Duration        time.Duration `json:"-"`
	DurationMs      int64         `json:"durationMs"`
	Timestamp       time.Time     `json:"timestamp"`
}

// SignalJob recalculates signals for every tracked coin, stores them, and notifies on
// changes worth acting on. Runs never overlap.
type SignalJob struct {
	symbols    SymbolLister
	indicators SwingSource
	prices     domain.PriceSource
	signals    domain.SignalRepository
	notifier   Notifier
	engineCfg  engine.Config
	cfg        JobConfig
	clock      cache.Clock
	logger     zerolog.Logger

	running atomic.Bool
	lastMu  sync.RWMutex
	last    *JobReport
}

func NewSignalJob(
	symbols SymbolLister,
	indicators SwingSource,
	prices domain.PriceSource,
	signals domain.SignalRepository,
	notifier Notifier,
	engineCfg engine.Config,
	cfg JobConfig,
	clock cache.Clock,
	logger zerolog.Logger,
) *SignalJob {
	if clock == nil {
		clock = cache.SystemClock
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &SignalJob{
		symbols:    symbols,
		indicators: indicators,
		prices:     prices,
		signals:    signals,
		notifier:   notifier,
		engineCfg:  engineCfg,
		cfg:        cfg,
		clock:      clock,
		logger:     logger.With().Str("component", "signal_job").Logger(),
	}
}

// EngineConfig returns the scoring configuration the job runs with.
func (j *SignalJob) EngineConfig() engine.Config {
	return j.engineCfg
}

// LastReport returns the most recent completed run, if any.
func (j *SignalJob) LastReport() (JobReport, bool) {
	j.lastMu.RLock()
	defer j.lastMu.RUnlock()
	if j.last == nil {
		return JobReport{}, false
	}
	return *j.last, true
}

// Run triggers the job on every interval tick until ctx is cancelled.
func (j *SignalJob) Run(ctx context.Context) {
	ticker := time.NewTicker(j.cfg.Interval)
	defer ticker.Stop()

	if j.cfg.RunOnStart {
		j.runLogged(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *SignalJob) runLogged(ctx context.Context) {
	report, err := j.Trigger(ctx)
	if errors.Is(err, ErrJobInProgress) {
		j.logger.Warn().Msg("previous run still in progress, skipping tick")
		return
	}
	if err != nil {
		j.logger.Error().Err(err).Msg("signal job failed")
		return
	}
	j.logger.Info().
		Int("processed", report.Processed).
		Int("successful", report.Successful).
		Int("failed", report.Failed).
		Int("alert_candidates", report.AlertCandidates).
		Int("notified", report.Notified).
		Dur("duration", report.Duration).
		Msg("signal job finished")
}

// Trigger runs the job once. It returns ErrJobInProgress without doing anything when a run
// is already active. Per coin failures land in the report, not in the error.
func (j *SignalJob) Trigger(ctx context.Context) (JobReport, error) {
	if !j.running.CompareAndSwap(false, true) {
		return JobReport{}, ErrJobInProgress
	}
	defer j.running.Store(false)

	if j.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.cfg.Timeout)
		defer cancel()
	}

	start := j.clock.Now()
	symbols, err := j.symbols(ctx)
	if err != nil {
		return JobReport{}, fmt.Errorf("list symbols: %w", err)
	}
	symbols = uniqueSymbols(symbols)

	if p, ok := j.prices.(pricePrimer); ok {
		if _, err := p.Prime(ctx); err != nil {
			j.logger.Warn().Err(err).Msg("bulk price load failed, falling back to per coin requests")
		}
	}

	report := JobReport{Errors: []string{}}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, j.cfg.Workers)

	for _, sym := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				report.Processed++
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", symbol, ctx.Err()))
				mu.Unlock()
				return
			}
			defer func() { <-sem }()

			outcome, err := j.processCoin(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			report.Processed++
			if err != nil {
				report.Failed++
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", symbol, err))
				return
			}
			report.Successful++
			if outcome.candidate {
				report.AlertCandidates++
			}
			if outcome.notified {
				report.Notified++
			}
		}(sym)
	}
	wg.Wait()

	report.Timestamp = j.clock.Now()
	report.Duration = report.Timestamp.Sub(start)
	report.DurationMs = report.Duration.Milliseconds()

	j.lastMu.Lock()
	j.last = &report
	j.lastMu.Unlock()
	return report, nil
}

type coinOutcome struct {
	candidate bool
	notified  bool
}

// processCoin reads the previous signal strictly before saving the new one, so the
// comparison never sees its own write.
func (j *SignalJob) processCoin(ctx context.Context, symbol string) (coinOutcome, error) {
	ind, err := j.indicators.Swing(ctx, symbol)
	if err != nil {
		return coinOutcome{}, fmt.Errorf("indicators: %w", err)
	}

	coin, err := j.prices.GetCoin(ctx, symbol)
	if err != nil {
		if ind.MA == nil {
			return coinOutcome{}, fmt.Errorf("price: %w", err)
		}
		j.logger.Warn().Err(err).Str("symbol", symbol).Msg("no live price, using moving average")
		coin = domain.Coin{ID: strings.ToLower(symbol), Symbol: symbol, CurrentPrice: *ind.MA}
	}

	previous, err := j.signals.GetLatest(ctx, symbol)
	if errors.Is(err, domain.ErrNotFound) {
		previous = nil
	} else if err != nil {
		return coinOutcome{}, fmt.Errorf("previous signal: %w", err)
	}

	sig := engine.CalculateSignalWithConfig(ind.IndicatorRecord, coin, j.engineCfg)
	sig.CalculatedAt = j.clock.Now()
	if err := j.signals.Save(ctx, &sig); err != nil {
		return coinOutcome{}, fmt.Errorf("save signal: %w", err)
	}

	change := engine.CompareSignals(previous, sig, j.engineCfg.Thresholds)
	if !engine.ShouldNotify(change) {
		return coinOutcome{}, nil
	}

	out := coinOutcome{candidate: true}
	if j.notifier != nil {
		out.notified = j.notifier.Notify(ctx, sig, change)
	}
	return out, nil
}

// StaticSymbols returns a SymbolLister for a fixed list.
// uniqueSymbols upper-cases symbols and drops blanks and repeats, keeping first-seen
// order. Each coin must be processed by exactly one goroutine per run.
func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

func StaticSymbols(symbols []string) SymbolLister {
	return func(context.Context) ([]string, error) {
		return symbols, nil
	}
}
