package domain

import (
	"encoding/json"
	"fmt"
)

type StrategyMode string

const (
	ModeSwing StrategyMode = "swing"
	ModeScalp StrategyMode = "scalp"
)

// ParseStrategyMode accepts "swing" or "scalp". An empty string means swing.
func ParseStrategyMode(s string) (StrategyMode, error) {
	switch StrategyMode(s) {
	case "", ModeSwing:
		return ModeSwing, nil
	case ModeScalp:
		return ModeScalp, nil
	}
	return "", fmt.Errorf("unknown strategy mode %q", s)
}

// AnalysisRequest is the payload handed to an external text analyzer. It is either a
// SwingAnalysis or a ScalpAnalysis.
type AnalysisRequest interface {
	Mode() StrategyMode
	analysisRequest()
}

type FibLevel struct {
	Value      *float64 `json:"value"`
	Trend      string   `json:"trend,omitempty"`
	StartPrice *float64 `json:"startPrice"`
	EndPrice   *float64 `json:"endPrice"`
}

type SwingAnalysis struct {
	Symbol string   `json:"symbol"`
	Price  float64  `json:"price"`
	MA     *float64 `json:"ma"`
	MA50   *float64 `json:"ma50"`
	MA100  *float64 `json:"ma100"`
	MA200  *float64 `json:"ma200"`
	ATR    *float64 `json:"atr"`
	Fib    FibLevel `json:"fib"`
	RSI    *float64 `json:"rsi"`
	ADX    *float64 `json:"adx"`
}

type ScalpAnalysis struct {
	Symbol string         `json:"symbol"`
	Price  float64        `json:"price"`
	ATR    *float64       `json:"atr"`
	VWAP   *float64       `json:"vwap"`
	BBands BollingerBands `json:"bbands"`
	Pivot  PivotLevels    `json:"pivot"`
	RSI    *float64       `json:"rsi"`
}

func (SwingAnalysis) Mode() StrategyMode { return ModeSwing }
func (ScalpAnalysis) Mode() StrategyMode { return ModeScalp }

func (SwingAnalysis) analysisRequest() {}
func (ScalpAnalysis) analysisRequest() {}

// NewSwingAnalysis builds the swing variant from a stored snapshot.
func NewSwingAnalysis(coin Coin, ind SwingIndicators) SwingAnalysis {
	return SwingAnalysis{
		Symbol: coin.Symbol,
		Price:  coin.CurrentPrice,
		MA:     ind.MA,
		MA50:   ind.MA50,
		MA100:  ind.MA100,
		MA200:  ind.MA200,
		ATR:    ind.ATR,
		Fib: FibLevel{
			Value:      ind.FibValue,
			Trend:      ind.FibTrend,
			StartPrice: ind.FibStartPrice,
			EndPrice:   ind.FibEndPrice,
		},
		RSI: ind.RSI,
		ADX: ind.ADX,
	}
}

// NewScalpAnalysis builds the scalp variant from a stored snapshot.
func NewScalpAnalysis(coin Coin, ind ScalpIndicators) ScalpAnalysis {
	return ScalpAnalysis{
		Symbol: coin.Symbol,
		Price:  coin.CurrentPrice,
		ATR:    ind.ATR,
		VWAP:   ind.VWAP,
		BBands: ind.BBands,
		Pivot:  ind.Pivot,
		RSI:    ind.RSI,
	}
}

// MarshalAnalysis encodes req with a "mode" discriminator next to its payload.
func MarshalAnalysis(req AnalysisRequest) ([]byte, error) {
	return json.Marshal(struct {
		Mode    StrategyMode    `json:"mode"`
		Payload AnalysisRequest `json:"payload"`
	}{Mode: req.Mode(), Payload: req})
}
