package db

import (
	"testing"
	"time"
)

func TestWithSSLMode(t *testing.T) {
	tests := []struct {
		in, mode, want string
	}{
		{"postgres://u:p@host:5432/db", "require", "postgres://u:p@host:5432/db?sslmode=require"},
		{"postgres://u:p@host:5432/db?sslmode=disable", "require", "postgres://u:p@host:5432/db?sslmode=disable"},
		{"postgres://u:p@host:5432/db", "", "postgres://u:p@host:5432/db"},
	}
	for _, tt := range tests {
		if got := withSSLMode(tt.in, tt.mode); got != tt.want {
			t.Errorf("withSSLMode(%q, %q) = %q, want %q", tt.in, tt.mode, got, tt.want)
		}
	}
}

func TestPoolConfigFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_MIN_CONNS", "9")
	t.Setenv("DB_MAX_CONN_LIFETIME", "1h")
	t.Setenv("DB_SSLMODE", "disable")

	cfg := PoolConfigFromEnv()
	if cfg.MaxConns != 4 || cfg.MinConns != 4 {
		t.Errorf("conns = %d/%d, want min clamped to max", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxConnLifetime != time.Hour {
		t.Errorf("lifetime = %v", cfg.MaxConnLifetime)
	}
	if cfg.SSLMode != "disable" {
		t.Errorf("sslmode = %q", cfg.SSLMode)
	}
}
