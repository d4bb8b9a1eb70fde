package repository

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"signal-backend/internal/domain"
)

// DeviceToken represents a registered device token
type DeviceToken struct {
	Token        string
	Platform     string // "android" or "ios"
	RegisteredAt time.Time
}

// TokenRepository manages device tokens for push notifications in memory.
type TokenRepository struct {
	tokens map[string]DeviceToken
	mu     sync.RWMutex
}

func NewTokenRepository() *TokenRepository {
	return &TokenRepository{
		tokens: make(map[string]DeviceToken),
	}
}

// RegisterToken adds or updates a device token
func (r *TokenRepository) RegisterToken(_ context.Context, token, platform string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = DeviceToken{Token: token, Platform: platform, RegisteredAt: time.Now()}
	return nil
}

func (r *TokenRepository) UnregisterToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

func (r *TokenRepository) GetAllTokens(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]string, 0, len(r.tokens))
	for token := range r.tokens {
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *TokenRepository) GetTokenCount(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.tokens), nil
}

// PostgresTokenRepository persists device tokens so registrations survive restarts.
type PostgresTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresTokenRepository(pool *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{pool: pool}
}

func (r *PostgresTokenRepository) RegisterToken(ctx context.Context, token, platform string) error {
	_, err := r.pool.Exec(ctx, `
		insert into device_tokens(token, platform, registered_at)
		values ($1, $2, now())
		on conflict (token) do update set platform = excluded.platform, registered_at = now()
	`, token, platform)
	return domain.WrapStoreError("register token", err)
}

func (r *PostgresTokenRepository) UnregisterToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `delete from device_tokens where token = $1`, token)
	return domain.WrapStoreError("unregister token", err)
}

func (r *PostgresTokenRepository) GetAllTokens(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `select token from device_tokens`)
	if err != nil {
		return nil, domain.WrapStoreError("list tokens", err)
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, domain.WrapStoreError("list tokens", err)
		}
		tokens = append(tokens, t)
	}
	return tokens, domain.WrapStoreError("list tokens", rows.Err())
}

func (r *PostgresTokenRepository) GetTokenCount(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `select count(*) from device_tokens`).Scan(&n)
	return n, domain.WrapStoreError("count tokens", err)
}

var (
	_ domain.DeviceTokenStore = (*TokenRepository)(nil)
	_ domain.DeviceTokenStore = (*PostgresTokenRepository)(nil)
)
