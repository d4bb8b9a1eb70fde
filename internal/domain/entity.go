package domain

import "time"

// Coin is the price record for a tracked market.
type Coin struct {
	ID                 string  `json:"id"`
	Symbol             string  `json:"symbol"`
	CurrentPrice       float64 `json:"currentPrice"`
	High24h            float64 `json:"high24h,omitempty"`
	Low24h             float64 `json:"low24h,omitempty"`
	QuoteVolume        float64 `json:"quoteVolume,omitempty"`
	PriceChangePercent float64 `json:"priceChangePercent,omitempty"`
}

// IndicatorRecord is the engine input. Every field is optional; a nil value means the
// indicator source had no data for it.
type IndicatorRecord struct {
	MA50          *float64 `json:"ma50"`
	MA100         *float64 `json:"ma100"`
	MA200         *float64 `json:"ma200"`
	ADX           *float64 `json:"adx"`
	RSI           *float64 `json:"rsi"`
	ATR           *float64 `json:"atr"`
	FibValue      *float64 `json:"fibValue"`      // 61.8% retracement level
	FibStartPrice *float64 `json:"fibStartPrice"` // swing low
	FibEndPrice   *float64 `json:"fibEndPrice"`   // swing high
}

// HasRequired reports whether all fields needed for scoring are present.
func (r IndicatorRecord) HasRequired() bool {
	return r.MA50 != nil && r.MA100 != nil && r.MA200 != nil &&
		r.ADX != nil && r.RSI != nil && r.ATR != nil && r.FibValue != nil
}

// SwingIndicators is a stored 4h indicator snapshot for one coin.
type SwingIndicators struct {
	Symbol string `json:"symbol"`
	IndicatorRecord
	MA        *float64  `json:"ma"`       // short EMA, used as a fallback price
	FibTrend  string    `json:"fibTrend"` // "UP" or "DOWN"
	UpdatedAt time.Time `json:"updatedAt"`
}

// BollingerBands holds the last value of each band.
type BollingerBands struct {
	Upper  *float64 `json:"upper"`
	Middle *float64 `json:"middle"`
	Lower  *float64 `json:"lower"`
}

// PivotLevels are classic floor pivots.
type PivotLevels struct {
	P  *float64 `json:"p"`
	R1 *float64 `json:"r1"`
	R2 *float64 `json:"r2"`
	R3 *float64 `json:"r3"`
	S1 *float64 `json:"s1"`
	S2 *float64 `json:"s2"`
	S3 *float64 `json:"s3"`
}

// ScalpIndicators is a stored intraday indicator snapshot for one coin.
type ScalpIndicators struct {
	Symbol    string         `json:"symbol"`
	ATR       *float64       `json:"atr"`
	VWAP      *float64       `json:"vwap"`
	BBands    BollingerBands `json:"bbands"`
	Pivot     PivotLevels    `json:"pivot"`
	RSI       *float64       `json:"rsi"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
