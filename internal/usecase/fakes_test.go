package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"signal-backend/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func f(v float64) *float64 { return &v }

// bullishSwing scores 84 (LONG) at a price of 115.
func bullishSwing(symbol string) *domain.SwingIndicators {
	return &domain.SwingIndicators{
		Symbol: symbol,
		IndicatorRecord: domain.IndicatorRecord{
			MA50: f(110), MA100: f(100), MA200: f(90),
			ADX: f(45), RSI: f(50), ATR: f(2),
			FibValue: f(95), FibEndPrice: f(120),
		},
		MA: f(115),
	}
}

// flatSwing fails the trend gate and scores a WAIT.
func flatSwing(symbol string) *domain.SwingIndicators {
	ind := bullishSwing(symbol)
	ind.ADX = f(15)
	return ind
}

type fakeSwingSource struct {
	mu      sync.Mutex
	records map[string]*domain.SwingIndicators
	block   chan struct{} // when set, Swing waits on it
	started chan struct{}
}

func (s *fakeSwingSource) Swing(ctx context.Context, symbol string) (*domain.SwingIndicators, error) {
	if s.started != nil {
		select {
		case s.started <- struct{}{}:
		default:
		}
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ind, ok := s.records[symbol]
	if !ok {
		return nil, errors.New("no klines")
	}
	return ind, nil
}

func (s *fakeSwingSource) set(symbol string, ind *domain.SwingIndicators) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[symbol] = ind
}

type fakePrices struct {
	prices map[string]float64
}

func (p *fakePrices) GetCoin(_ context.Context, symbol string) (domain.Coin, error) {
	price, ok := p.prices[symbol]
	if !ok {
		return domain.Coin{}, errors.New("no price available")
	}
	return domain.Coin{ID: symbol, Symbol: symbol, CurrentPrice: price}, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []domain.SignalChange
}

func (n *recordingNotifier) Notify(_ context.Context, _ domain.Signal, change domain.SignalChange) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
	return true
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}
