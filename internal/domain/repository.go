package domain

import (
	"context"
	"time"
)

// SignalRepository is an append-only log of computed signals.
type SignalRepository interface {
	Save(ctx context.Context, signal *Signal) error
	// GetLatest returns ErrNotFound when the coin has no stored signal.
	GetLatest(ctx context.Context, symbol string) (*Signal, error)
	// ListLatestVisible returns the newest signal per coin with ShowInUI set, highest score first.
	ListLatestVisible(ctx context.Context) ([]Signal, error)
	// ListByScore returns the newest signal per coin whose score is at least minScore.
	ListByScore(ctx context.Context, minScore, limit int) ([]Signal, error)
}

// IndicatorRepository stores the latest indicator snapshot per coin.
type IndicatorRepository interface {
	GetSwing(ctx context.Context, symbol string) (*SwingIndicators, error)
	SaveSwing(ctx context.Context, ind *SwingIndicators) error
	GetScalp(ctx context.Context, symbol string) (*ScalpIndicators, error)
	SaveScalp(ctx context.Context, ind *ScalpIndicators) error
}

// AlertRepository records notification attempts.
type AlertRepository interface {
	SaveAlert(ctx context.Context, alert *SignalAlert) error
	ListPending(ctx context.Context, since time.Time) ([]SignalAlert, error)
}

// DeviceTokenStore holds push notification device tokens.
type DeviceTokenStore interface {
	RegisterToken(ctx context.Context, token, platform string) error
	UnregisterToken(ctx context.Context, token string) error
	GetAllTokens(ctx context.Context) ([]string, error)
	GetTokenCount(ctx context.Context) (int, error)
}

// PriceSource returns the current market record for a symbol.
type PriceSource interface {
	GetCoin(ctx context.Context, symbol string) (Coin, error)
}
