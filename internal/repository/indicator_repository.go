package repository

import (
	"context"
	"strings"
	"sync"

	"signal-backend/internal/domain"
)

// InMemoryIndicatorRepository holds the latest snapshots in process memory.
type InMemoryIndicatorRepository struct {
	swing map[string]domain.SwingIndicators
	scalp map[string]domain.ScalpIndicators
	mu    sync.RWMutex
}

func NewInMemoryIndicatorRepository() *InMemoryIndicatorRepository {
	return &InMemoryIndicatorRepository{
		swing: make(map[string]domain.SwingIndicators),
		scalp: make(map[string]domain.ScalpIndicators),
	}
}

func (r *InMemoryIndicatorRepository) GetSwing(_ context.Context, symbol string) (*domain.SwingIndicators, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ind, ok := r.swing[strings.ToUpper(symbol)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ind, nil
}

func (r *InMemoryIndicatorRepository) SaveSwing(_ context.Context, ind *domain.SwingIndicators) error {
	if err := domain.ValidateIndicatorRecord(ind.IndicatorRecord); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.swing[strings.ToUpper(ind.Symbol)] = *ind
	return nil
}

func (r *InMemoryIndicatorRepository) GetScalp(_ context.Context, symbol string) (*domain.ScalpIndicators, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ind, ok := r.scalp[strings.ToUpper(symbol)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ind, nil
}

func (r *InMemoryIndicatorRepository) SaveScalp(_ context.Context, ind *domain.ScalpIndicators) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scalp[strings.ToUpper(ind.Symbol)] = *ind
	return nil
}

var _ domain.IndicatorRepository = (*InMemoryIndicatorRepository)(nil)
