package domain

import (
	"errors"
	"testing"
)

func TestDecodeIndicatorRecord(t *testing.T) {
	rec, err := DecodeIndicatorRecord([]byte(`{
		"ma50": 105, "ma100": "100", "ma200": 95,
		"adx": 40, "rsi": null, "atr": 2,
		"fib_value": 112, "fibEndPrice": 120, "extra": "ignored"
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.MA100 == nil || *rec.MA100 != 100 {
		t.Errorf("string number not decoded: %v", rec.MA100)
	}
	if rec.RSI != nil {
		t.Errorf("null rsi decoded as %v", *rec.RSI)
	}
	if rec.FibValue == nil || *rec.FibValue != 112 {
		t.Errorf("snake_case alias not decoded")
	}
	if rec.FibStartPrice != nil {
		t.Errorf("absent field decoded")
	}
	if rec.HasRequired() {
		t.Error("record without rsi should not have all required fields")
	}
}

func TestDecodeIndicatorRecord_ColumnNames(t *testing.T) {
	rec, err := DecodeIndicatorRecord([]byte(`{
		"ma50": 110, "ma100": 100, "ma200": 90, "adx": 45, "rsi": 50, "atr": 2,
		"fib_value": 95, "fib_start_price": 80, "fib_end_price": 120
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.FibStartPrice == nil || *rec.FibStartPrice != 80 {
		t.Errorf("fib_start_price not decoded: %v", rec.FibStartPrice)
	}
	if rec.FibEndPrice == nil || *rec.FibEndPrice != 120 {
		t.Errorf("fib_end_price not decoded: %v", rec.FibEndPrice)
	}
}

func TestDecodeIndicatorRecord_AgreeingAliases(t *testing.T) {
	rec, err := DecodeIndicatorRecord([]byte(`{"fibValue": 95, "fib_value": "95", "fib_end": null, "fibEndPrice": 120}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.FibValue == nil || *rec.FibValue != 95 {
		t.Errorf("fibValue = %v, want 95", rec.FibValue)
	}
	if rec.FibEndPrice == nil || *rec.FibEndPrice != 120 {
		t.Errorf("null alias cleared fibEndPrice: %v", rec.FibEndPrice)
	}
}

func TestDecodeIndicatorRecord_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"not an object", `[1,2]`, ""},
		{"bool", `{"adx": true}`, "adx"},
		{"bad string", `{"atr": "abc"}`, "atr"},
		{"negative", `{"ma50": -1}`, "ma50"},
		{"rsi above 100", `{"rsi": 101}`, "rsi"},
		{"nan string", `{"atr": "NaN"}`, "atr"},
		{"conflicting aliases", `{"fibValue": 95, "fib_value": 96}`, "fib_value"},
		{"conflicting column alias", `{"fib_end_price": 120, "fib_end": 121}`, "fib_end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeIndicatorRecord([]byte(tt.body))
			var decErr *DecodeError
			if !errors.As(err, &decErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decErr.Field != tt.field {
				t.Errorf("field = %q, want %q", decErr.Field, tt.field)
			}
		})
	}
}
