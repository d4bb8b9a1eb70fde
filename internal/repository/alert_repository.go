package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-backend/internal/domain"
)

// PostgresAlertRepository records notification attempts in signal_alerts.
type PostgresAlertRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresAlertRepository(pool *pgxpool.Pool) *PostgresAlertRepository {
	return &PostgresAlertRepository{pool: pool}
}

func (r *PostgresAlertRepository) SaveAlert(ctx context.Context, alert *domain.SignalAlert) error {
	if alert == nil {
		return errors.New("nil alert")
	}
	prepareAlert(alert)

	var oldDecision *string
	if d := alert.Change.OldDecision; d != nil {
		s := string(*d)
		oldDecision = &s
	}

	_, err := r.pool.Exec(ctx, `
		insert into signal_alerts(id, symbol, channel, change_type, old_score, new_score,
			old_decision, new_decision, crossed_threshold, price, error, sent_at, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		alert.ID,
		alert.Change.CoinSymbol,
		alert.Channel,
		string(alert.Change.ChangeType),
		nullableInt(alert.Change.OldScore),
		alert.Change.NewScore,
		oldDecision,
		string(alert.Change.NewDecision),
		nullableText(string(alert.Change.CrossedThreshold)),
		alert.Price,
		nullableText(alert.Error),
		nullableTime(alert.SentAt),
		alert.CreatedAt,
	)
	return domain.WrapStoreError("save alert", err)
}

// ListPending returns attempts created since the given time that were never sent.
func (r *PostgresAlertRepository) ListPending(ctx context.Context, since time.Time) ([]domain.SignalAlert, error) {
	rows, err := r.pool.Query(ctx, `
		select id, symbol, channel, change_type, old_score, new_score,
			old_decision, new_decision, crossed_threshold, price, error, sent_at, created_at
		from signal_alerts
		where sent_at is null and created_at >= $1
		order by created_at
	`, since)
	if err != nil {
		return nil, domain.WrapStoreError("list pending alerts", err)
	}
	defer rows.Close()

	alerts := make([]domain.SignalAlert, 0)
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, domain.WrapStoreError("list pending alerts", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, domain.WrapStoreError("list pending alerts", rows.Err())
}

func scanAlert(s scanner) (domain.SignalAlert, error) {
	var a domain.SignalAlert
	var changeType, newDecision string
	var oldScore pgtype.Int4
	var oldDecision, crossed, errText pgtype.Text
	var sentAt pgtype.Timestamptz

	if err := s.Scan(&a.ID, &a.Change.CoinSymbol, &a.Channel, &changeType, &oldScore, &a.Change.NewScore,
		&oldDecision, &newDecision, &crossed, &a.Price, &errText, &sentAt, &a.CreatedAt); err != nil {
		return a, err
	}

	a.Change.ChangeType = domain.ChangeType(changeType)
	a.Change.NewDecision = domain.Decision(newDecision)
	a.Change.CrossedThreshold = domain.Threshold(crossed.String)
	a.Error = errText.String
	if oldScore.Valid {
		v := int(oldScore.Int32)
		a.Change.OldScore = &v
	}
	if oldDecision.Valid {
		d := domain.Decision(oldDecision.String)
		a.Change.OldDecision = &d
	}
	if sentAt.Valid {
		t := sentAt.Time
		a.SentAt = &t
	}
	return a, nil
}

func prepareAlert(alert *domain.SignalAlert) {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
}

// InMemoryAlertRepository keeps the alert log in process memory.
type InMemoryAlertRepository struct {
	alerts []domain.SignalAlert
	mu     sync.RWMutex
}

func NewInMemoryAlertRepository() *InMemoryAlertRepository {
	return &InMemoryAlertRepository{}
}

func (r *InMemoryAlertRepository) SaveAlert(_ context.Context, alert *domain.SignalAlert) error {
	prepareAlert(alert)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.alerts = append(r.alerts, *alert)
	return nil
}

func (r *InMemoryAlertRepository) ListPending(_ context.Context, since time.Time) ([]domain.SignalAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pending := make([]domain.SignalAlert, 0)
	for _, a := range r.alerts {
		if a.SentAt == nil && !a.CreatedAt.Before(since) {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// All returns every recorded attempt, oldest first.
func (r *InMemoryAlertRepository) All() []domain.SignalAlert {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.SignalAlert, len(r.alerts))
	copy(out, r.alerts)
	return out
}

var (
	_ domain.AlertRepository = (*PostgresAlertRepository)(nil)
	_ domain.AlertRepository = (*InMemoryAlertRepository)(nil)
)
