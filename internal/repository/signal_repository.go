package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"signal-backend/internal/domain"
)

// InMemorySignalRepository keeps the signal log in process memory. It backs local runs
// without DATABASE_URL and the tests.
type InMemorySignalRepository struct {
	history map[string][]domain.Signal // symbol -> signals, oldest first
	mu      sync.RWMutex
}

func NewInMemorySignalRepository() *InMemorySignalRepository {
	return &InMemorySignalRepository{
		history: make(map[string][]domain.Signal),
	}
}

func (r *InMemorySignalRepository) Save(_ context.Context, signal *domain.Signal) error {
	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToUpper(signal.Coin.Symbol)
	r.history[key] = append(r.history[key], *signal)
	return nil
}

func (r *InMemorySignalRepository) GetLatest(_ context.Context, symbol string) (*domain.Signal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	signals := r.history[strings.ToUpper(symbol)]
	if len(signals) == 0 {
		return nil, domain.ErrNotFound
	}
	latest := signals[len(signals)-1]
	return &latest, nil
}

func (r *InMemorySignalRepository) ListLatestVisible(_ context.Context) ([]domain.Signal, error) {
	return r.latestWhere(func(s domain.Signal) bool { return s.ShowInUI }, 0), nil
}

func (r *InMemorySignalRepository) ListByScore(_ context.Context, minScore, limit int) ([]domain.Signal, error) {
	return r.latestWhere(func(s domain.Signal) bool { return s.Score >= minScore }, limit), nil
}

// latestWhere returns the newest signal of every coin that passes keep, highest score
// first. A limit of zero or less means no limit.
func (r *InMemorySignalRepository) latestWhere(keep func(domain.Signal) bool, limit int) []domain.Signal {
	r.mu.RLock()
	result := make([]domain.Signal, 0, len(r.history))
	for _, signals := range r.history {
		if latest := signals[len(signals)-1]; keep(latest) {
			result = append(result, latest)
		}
	}
	r.mu.RUnlock()

	sortByScore(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func sortByScore(signals []domain.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Coin.Symbol < signals[j].Coin.Symbol
	})
}

var _ domain.SignalRepository = (*InMemorySignalRepository)(nil)
