package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/cache"
)

// CachedSignalRepository fronts a SignalRepository with a read-through cache of the
// latest signal per coin. Cache failures are logged and fall through to the backing
// store; they never fail a call.
type CachedSignalRepository struct {
	domain.SignalRepository
	store  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedSignalRepository(backing domain.SignalRepository, store cache.Store, ttl time.Duration, logger zerolog.Logger) *CachedSignalRepository {
	return &CachedSignalRepository{
		SignalRepository: backing,
		store:            store,
		ttl:              ttl,
		logger:           logger.With().Str("component", "signal_cache").Logger(),
	}
}

func latestKey(symbol string) string {
	return "signal:latest:" + strings.ToUpper(symbol)
}

// Save writes to the backing store first so the cache never holds a signal that was not
// persisted.
func (r *CachedSignalRepository) Save(ctx context.Context, signal *domain.Signal) error {
	if err := r.SignalRepository.Save(ctx, signal); err != nil {
		return err
	}
	r.put(ctx, signal)
	return nil
}

func (r *CachedSignalRepository) GetLatest(ctx context.Context, symbol string) (*domain.Signal, error) {
	key := latestKey(symbol)

	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		var s domain.Signal
		if jsonErr := json.Unmarshal(raw, &s); jsonErr == nil {
			return &s, nil
		}
		r.logger.Warn().Str("key", key).Msg("dropping undecodable cache entry")
		_ = r.store.Delete(ctx, key)
	case !errors.Is(err, cache.ErrMiss):
		r.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	s, err := r.SignalRepository.GetLatest(ctx, symbol)
	if err != nil {
		return nil, err
	}
	r.put(ctx, s)
	return s, nil
}

func (r *CachedSignalRepository) put(ctx context.Context, signal *domain.Signal) {
	raw, err := json.Marshal(signal)
	if err != nil {
		return
	}
	key := latestKey(signal.Coin.Symbol)
	if err := r.store.Set(ctx, key, raw, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

var _ domain.SignalRepository = (*CachedSignalRepository)(nil)
