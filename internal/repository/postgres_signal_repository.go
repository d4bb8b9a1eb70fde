package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-backend/internal/domain"
)

// PostgresSignalRepository stores the append-only signal log in the signals table.
type PostgresSignalRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSignalRepository(pool *pgxpool.Pool) *PostgresSignalRepository {
	return &PostgresSignalRepository{pool: pool}
}

const signalColumns = `id, coin_id, symbol, price, decision, score, show_in_ui,
	trend, momentum, structure, risk,
	entry_price, take_profit, stop_loss,
	justification, calculated_at`

// latestSignalsQuery keeps only the newest row per symbol.
const latestSignalsQuery = `select distinct on (symbol) ` + signalColumns + `
	from signals
	order by symbol, calculated_at desc`

func (r *PostgresSignalRepository) Save(ctx context.Context, signal *domain.Signal) error {
	if signal == nil {
		return errors.New("nil signal")
	}
	if signal.ID == "" {
		signal.ID = uuid.NewString()
	}

	parts := make([][]byte, 0, 4)
	for _, part := range []any{signal.Trend, signal.Momentum, signal.Structure, signal.Risk} {
		b, err := json.Marshal(part)
		if err != nil {
			return domain.WrapStoreError("save signal", err)
		}
		parts = append(parts, b)
	}

	var entry, tp, sl *float64
	if lv := signal.TradeLevels; lv != nil {
		entry, tp, sl = &lv.EntryPrice, &lv.TakeProfit, &lv.StopLoss
	}

	_, err := r.pool.Exec(ctx, `
		insert into signals(`+signalColumns+`)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		signal.ID,
		signal.Coin.ID,
		strings.ToUpper(signal.Coin.Symbol),
		signal.Coin.CurrentPrice,
		string(signal.Decision),
		signal.Score,
		signal.ShowInUI,
		parts[0], parts[1], parts[2], parts[3],
		nullableFloat(entry),
		nullableFloat(tp),
		nullableFloat(sl),
		signal.Justification,
		signal.CalculatedAt,
	)
	return domain.WrapStoreError("save signal", err)
}

func (r *PostgresSignalRepository) GetLatest(ctx context.Context, symbol string) (*domain.Signal, error) {
	row := r.pool.QueryRow(ctx, `
		select `+signalColumns+`
		from signals
		where symbol = $1
		order by calculated_at desc
		limit 1
	`, strings.ToUpper(symbol))

	s, err := scanSignal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStoreError("get latest signal", err)
	}
	return s, nil
}

func (r *PostgresSignalRepository) ListLatestVisible(ctx context.Context) ([]domain.Signal, error) {
	return r.list(ctx, "list visible signals", `
		select * from (`+latestSignalsQuery+`) latest
		where show_in_ui
		order by score desc, symbol
	`)
}

func (r *PostgresSignalRepository) ListByScore(ctx context.Context, minScore, limit int) ([]domain.Signal, error) {
	query := `
		select * from (` + latestSignalsQuery + `) latest
		where score >= $1
		order by score desc, symbol`
	args := []any{minScore}
	if limit > 0 {
		query += ` limit $2`
		args = append(args, limit)
	}
	return r.list(ctx, "list signals by score", query, args...)
}

func (r *PostgresSignalRepository) list(ctx context.Context, op, query string, args ...any) ([]domain.Signal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStoreError(op, err)
	}
	defer rows.Close()

	signals := make([]domain.Signal, 0)
	for rows.Next() {
		s, err := scanSignal(rows)
		if err != nil {
			return nil, domain.WrapStoreError(op, err)
		}
		signals = append(signals, *s)
	}
	return signals, domain.WrapStoreError(op, rows.Err())
}

func scanSignal(s scanner) (*domain.Signal, error) {
	var sig domain.Signal
	var decision string
	var trend, momentum, structure, risk []byte
	var entry, tp, sl pgtype.Float8

	if err := s.Scan(
		&sig.ID,
		&sig.Coin.ID,
		&sig.Coin.Symbol,
		&sig.Coin.CurrentPrice,
		&decision,
		&sig.Score,
		&sig.ShowInUI,
		&trend, &momentum, &structure, &risk,
		&entry, &tp, &sl,
		&sig.Justification,
		&sig.CalculatedAt,
	); err != nil {
		return nil, err
	}
	sig.Decision = domain.Decision(decision)

	for _, part := range []struct {
		raw []byte
		dst any
	}{
		{trend, &sig.Trend},
		{momentum, &sig.Momentum},
		{structure, &sig.Structure},
		{risk, &sig.Risk},
	} {
		if err := json.Unmarshal(part.raw, part.dst); err != nil {
			return nil, fmt.Errorf("decode signal %s: %w", sig.ID, err)
		}
	}

	if entry.Valid && tp.Valid && sl.Valid {
		sig.TradeLevels = &domain.TradeLevels{
			EntryPrice: entry.Float64,
			TakeProfit: tp.Float64,
			StopLoss:   sl.Float64,
		}
	}
	return &sig, nil
}

var _ domain.SignalRepository = (*PostgresSignalRepository)(nil)
