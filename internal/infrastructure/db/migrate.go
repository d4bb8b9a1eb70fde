package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the tables the signal pipeline needs. Statements are idempotent, so it
// runs on every start instead of through a migration tool.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`create table if not exists swing_indicators (
			symbol text primary key,
			ma double precision,
			ma50 double precision,
			ma100 double precision,
			ma200 double precision,
			adx double precision,
			rsi double precision,
			atr double precision,
			fib_value double precision,
			fib_start_price double precision,
			fib_end_price double precision,
			fib_trend text,
			updated_at timestamptz not null default now()
		);`,
		`create table if not exists scalp_indicators (
			symbol text primary key,
			atr double precision,
			vwap double precision,
			bb_upper double precision,
			bb_middle double precision,
			bb_lower double precision,
			pivot_p double precision,
			pivot_r1 double precision,
			pivot_r2 double precision,
			pivot_r3 double precision,
			pivot_s1 double precision,
			pivot_s2 double precision,
			pivot_s3 double precision,
			rsi double precision,
			updated_at timestamptz not null default now()
		);`,
		`create table if not exists signals (
			id uuid primary key,
			coin_id text not null,
			symbol text not null,
			price double precision not null,
			decision text not null,
			score int not null,
			show_in_ui boolean not null default false,
			trend jsonb not null,
			momentum jsonb not null,
			structure jsonb not null,
			risk jsonb not null,
			entry_price double precision,
			take_profit double precision,
			stop_loss double precision,
			justification text not null,
			calculated_at timestamptz not null
		);`,
		`create index if not exists signals_symbol_calculated_idx on signals(symbol, calculated_at desc);`,
		`create index if not exists signals_visible_idx on signals(show_in_ui, score desc);`,
		`create table if not exists signal_alerts (
			id uuid primary key,
			symbol text not null,
			channel text not null,
			change_type text not null,
			old_score int,
			new_score int not null,
			old_decision text,
			new_decision text not null,
			crossed_threshold text,
			price double precision not null,
			error text,
			sent_at timestamptz,
			created_at timestamptz not null default now()
		);`,
		`create index if not exists signal_alerts_pending_idx on signal_alerts(created_at) where sent_at is null;`,
		`create table if not exists device_tokens (
			token text primary key,
			platform text not null default '',
			registered_at timestamptz not null default now()
		);`,
	}

	for i, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d: %w", i, err)
		}
	}
	return nil
}
