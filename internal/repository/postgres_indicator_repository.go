package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-backend/internal/domain"
)

// PostgresIndicatorRepository keeps one swing row and one scalp row per coin.
// Rows read back are validated before they reach the engine.
type PostgresIndicatorRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresIndicatorRepository(pool *pgxpool.Pool) *PostgresIndicatorRepository {
	return &PostgresIndicatorRepository{pool: pool}
}

func (r *PostgresIndicatorRepository) GetSwing(ctx context.Context, symbol string) (*domain.SwingIndicators, error) {
	row := r.pool.QueryRow(ctx, `
		select symbol, ma, ma50, ma100, ma200, adx, rsi, atr,
			fib_value, fib_start_price, fib_end_price, fib_trend, updated_at
		from swing_indicators
		where symbol = $1
	`, strings.ToUpper(symbol))

	var ind domain.SwingIndicators
	var ma, ma50, ma100, ma200, adx, rsi, atr, fib, fibStart, fibEnd pgtype.Float8
	var trend pgtype.Text
	err := row.Scan(&ind.Symbol, &ma, &ma50, &ma100, &ma200, &adx, &rsi, &atr,
		&fib, &fibStart, &fibEnd, &trend, &ind.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStoreError("get swing indicators", err)
	}

	ind.MA = floatPtr(ma)
	ind.IndicatorRecord = domain.IndicatorRecord{
		MA50:          floatPtr(ma50),
		MA100:         floatPtr(ma100),
		MA200:         floatPtr(ma200),
		ADX:           floatPtr(adx),
		RSI:           floatPtr(rsi),
		ATR:           floatPtr(atr),
		FibValue:      floatPtr(fib),
		FibStartPrice: floatPtr(fibStart),
		FibEndPrice:   floatPtr(fibEnd),
	}
	ind.FibTrend = trend.String

	if err := domain.ValidateIndicatorRecord(ind.IndicatorRecord); err != nil {
		return nil, err
	}
	return &ind, nil
}

func (r *PostgresIndicatorRepository) SaveSwing(ctx context.Context, ind *domain.SwingIndicators) error {
	if ind == nil {
		return errors.New("nil swing indicators")
	}
	_, err := r.pool.Exec(ctx, `
		insert into swing_indicators(symbol, ma, ma50, ma100, ma200, adx, rsi, atr,
			fib_value, fib_start_price, fib_end_price, fib_trend, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		on conflict (symbol) do update set
			ma=excluded.ma, ma50=excluded.ma50, ma100=excluded.ma100, ma200=excluded.ma200,
			adx=excluded.adx, rsi=excluded.rsi, atr=excluded.atr,
			fib_value=excluded.fib_value, fib_start_price=excluded.fib_start_price,
			fib_end_price=excluded.fib_end_price, fib_trend=excluded.fib_trend,
			updated_at=excluded.updated_at
	`,
		strings.ToUpper(ind.Symbol),
		nullableFloat(ind.MA),
		nullableFloat(ind.MA50),
		nullableFloat(ind.MA100),
		nullableFloat(ind.MA200),
		nullableFloat(ind.ADX),
		nullableFloat(ind.RSI),
		nullableFloat(ind.ATR),
		nullableFloat(ind.FibValue),
		nullableFloat(ind.FibStartPrice),
		nullableFloat(ind.FibEndPrice),
		nullableText(ind.FibTrend),
		ind.UpdatedAt,
	)
	return domain.WrapStoreError("save swing indicators", err)
}

func (r *PostgresIndicatorRepository) GetScalp(ctx context.Context, symbol string) (*domain.ScalpIndicators, error) {
	row := r.pool.QueryRow(ctx, `
		select symbol, atr, vwap, bb_upper, bb_middle, bb_lower,
			pivot_p, pivot_r1, pivot_r2, pivot_r3, pivot_s1, pivot_s2, pivot_s3,
			rsi, updated_at
		from scalp_indicators
		where symbol = $1
	`, strings.ToUpper(symbol))

	var ind domain.ScalpIndicators
	var atr, vwap, upper, middle, lower, p, r1, r2, r3, s1, s2, s3, rsi pgtype.Float8
	err := row.Scan(&ind.Symbol, &atr, &vwap, &upper, &middle, &lower,
		&p, &r1, &r2, &r3, &s1, &s2, &s3, &rsi, &ind.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, domain.WrapStoreError("get scalp indicators", err)
	}

	ind.ATR = floatPtr(atr)
	ind.VWAP = floatPtr(vwap)
	ind.BBands = domain.BollingerBands{Upper: floatPtr(upper), Middle: floatPtr(middle), Lower: floatPtr(lower)}
	ind.Pivot = domain.PivotLevels{
		P:  floatPtr(p),
		R1: floatPtr(r1), R2: floatPtr(r2), R3: floatPtr(r3),
		S1: floatPtr(s1), S2: floatPtr(s2), S3: floatPtr(s3),
	}
	ind.RSI = floatPtr(rsi)
	return &ind, nil
}

func (r *PostgresIndicatorRepository) SaveScalp(ctx context.Context, ind *domain.ScalpIndicators) error {
	if ind == nil {
		return errors.New("nil scalp indicators")
	}
	_, err := r.pool.Exec(ctx, `
		insert into scalp_indicators(symbol, atr, vwap, bb_upper, bb_middle, bb_lower,
			pivot_p, pivot_r1, pivot_r2, pivot_r3, pivot_s1, pivot_s2, pivot_s3, rsi, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		on conflict (symbol) do update set
			atr=excluded.atr, vwap=excluded.vwap,
			bb_upper=excluded.bb_upper, bb_middle=excluded.bb_middle, bb_lower=excluded.bb_lower,
			pivot_p=excluded.pivot_p, pivot_r1=excluded.pivot_r1, pivot_r2=excluded.pivot_r2,
			pivot_r3=excluded.pivot_r3, pivot_s1=excluded.pivot_s1, pivot_s2=excluded.pivot_s2,
			pivot_s3=excluded.pivot_s3, rsi=excluded.rsi, updated_at=excluded.updated_at
	`,
		strings.ToUpper(ind.Symbol),
		nullableFloat(ind.ATR),
		nullableFloat(ind.VWAP),
		nullableFloat(ind.BBands.Upper),
		nullableFloat(ind.BBands.Middle),
		nullableFloat(ind.BBands.Lower),
		nullableFloat(ind.Pivot.P),
		nullableFloat(ind.Pivot.R1),
		nullableFloat(ind.Pivot.R2),
		nullableFloat(ind.Pivot.R3),
		nullableFloat(ind.Pivot.S1),
		nullableFloat(ind.Pivot.S2),
		nullableFloat(ind.Pivot.S3),
		nullableFloat(ind.RSI),
		ind.UpdatedAt,
	)
	return domain.WrapStoreError("save scalp indicators", err)
}

var _ domain.IndicatorRepository = (*PostgresIndicatorRepository)(nil)
