package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// indicatorFields lists each record field with the payload keys that fill it, camelCase
// first, then the storage column spelling and its short alias.
var indicatorFields = []struct {
	keys  []string
	field func(*IndicatorRecord) **float64
}{
	{[]string{"ma50"}, func(r *IndicatorRecord) **float64 { return &r.MA50 }},
	{[]string{"ma100"}, func(r *IndicatorRecord) **float64 { return &r.MA100 }},
	{[]string{"ma200"}, func(r *IndicatorRecord) **float64 { return &r.MA200 }},
	{[]string{"adx"}, func(r *IndicatorRecord) **float64 { return &r.ADX }},
	{[]string{"rsi"}, func(r *IndicatorRecord) **float64 { return &r.RSI }},
	{[]string{"atr"}, func(r *IndicatorRecord) **float64 { return &r.ATR }},
	{[]string{"fibValue", "fib_value"}, func(r *IndicatorRecord) **float64 { return &r.FibValue }},
	{[]string{"fibStartPrice", "fib_start_price", "fib_start"}, func(r *IndicatorRecord) **float64 { return &r.FibStartPrice }},
	{[]string{"fibEndPrice", "fib_end_price", "fib_end"}, func(r *IndicatorRecord) **float64 { return &r.FibEndPrice }},
}

// DecodeIndicatorRecord parses a JSON object into an IndicatorRecord. Absent and null
// fields stay nil. Numbers may be JSON numbers or numeric strings. Unknown keys are
// ignored. Aliases of one field must agree. Any present value that is not a finite
// number, or that breaks the range of its indicator, yields a *DecodeError.
func DecodeIndicatorRecord(data []byte) (IndicatorRecord, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return IndicatorRecord{}, &DecodeError{Reason: "payload is not a JSON object: " + err.Error()}
	}

	var rec IndicatorRecord
	for _, f := range indicatorFields {
		var (
			found *float64
			from  string
		)
		for _, key := range f.keys {
			value, ok := raw[key]
			if !ok {
				continue
			}
			v, err := decodeNumber(key, value)
			if err != nil {
				return IndicatorRecord{}, err
			}
			if v == nil {
				continue
			}
			if found != nil && *found != *v {
				return IndicatorRecord{}, &DecodeError{Field: key, Reason: "conflicts with " + from}
			}
			if found == nil {
				found, from = v, key
			}
		}
		if found != nil {
			*f.field(&rec) = found
		}
	}

	if err := ValidateIndicatorRecord(rec); err != nil {
		return IndicatorRecord{}, err
	}
	return rec, nil
}

func decodeNumber(key string, value json.RawMessage) (*float64, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return nil, nil
	}

	var f float64
	if err := json.Unmarshal(value, &f); err == nil {
		return &f, nil
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, &DecodeError{Field: key, Reason: "is not a number"}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &DecodeError{Field: key, Reason: "is not a number"}
	}
	return &f, nil
}

// ValidateIndicatorRecord checks every present field: all must be finite and
// non-negative, RSI at most 100 and ADX at most 100.
func ValidateIndicatorRecord(rec IndicatorRecord) error {
	fields := []struct {
		name string
		v    *float64
		max  float64
	}{
		{"ma50", rec.MA50, math.Inf(1)},
		{"ma100", rec.MA100, math.Inf(1)},
		{"ma200", rec.MA200, math.Inf(1)},
		{"adx", rec.ADX, 100},
		{"rsi", rec.RSI, 100},
		{"atr", rec.ATR, math.Inf(1)},
		{"fibValue", rec.FibValue, math.Inf(1)},
		{"fibStartPrice", rec.FibStartPrice, math.Inf(1)},
		{"fibEndPrice", rec.FibEndPrice, math.Inf(1)},
	}
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		v := *f.v
		switch {
		case math.IsNaN(v) || math.IsInf(v, 0):
			return &DecodeError{Field: f.name, Reason: "is not finite"}
		case v < 0:
			return &DecodeError{Field: f.name, Reason: "is negative"}
		case v > f.max:
			return &DecodeError{Field: f.name, Reason: "is out of range"}
		}
	}
	return nil
}
