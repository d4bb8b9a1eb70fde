package domain

import "time"

type Decision string

const (
	DecisionLong  Decision = "LONG"
	DecisionShort Decision = "SHORT"
	DecisionWait  Decision = "WAIT"
)

// IsTrade reports whether d opens a position.
func (d Decision) IsTrade() bool {
	return d == DecisionLong || d == DecisionShort
}

type TrendContext string

const (
	ContextBullish TrendContext = "BULLISH"
	ContextBearish TrendContext = "BEARISH"
	ContextNeutral TrendContext = "NEUTRAL"
)

type ADXStrength string

const (
	ADXStrong   ADXStrength = "STRONG"
	ADXModerate ADXStrength = "MODERATE"
	ADXWeak     ADXStrength = "WEAK"
)

type MAStructure string

const (
	MAPerfect MAStructure = "PERFECT"
	MAPartial MAStructure = "PARTIAL"
	MAMessy   MAStructure = "MESSY"
)

type PricePosition string

const (
	PriceAbove PricePosition = "ABOVE"
	PriceBelow PricePosition = "BELOW"
	PriceAt    PricePosition = "AT"
)

type MomentumZone string

const (
	ZoneHealthy    MomentumZone = "HEALTHY"
	ZoneStrong     MomentumZone = "STRONG"
	ZoneOverbought MomentumZone = "OVERBOUGHT"
	ZoneOversold   MomentumZone = "OVERSOLD"
	ZoneWeak       MomentumZone = "WEAK"
)

type FibCheck string

const (
	FibValidSafe    FibCheck = "VALID_SAFE"
	FibValidFragile FibCheck = "VALID_FRAGILE"
	FibInvalid      FibCheck = "INVALID"
)

type RiskAssessment string

const (
	RiskSafe     RiskAssessment = "SAFE"
	RiskElevated RiskAssessment = "ELEVATED"
	RiskExtreme  RiskAssessment = "EXTREME"
)

type TrendResult struct {
	Context     TrendContext  `json:"context"`
	Pass        bool          `json:"pass"`
	Points      int           `json:"points"`
	ADX         float64       `json:"adx"`
	ADXStrength ADXStrength   `json:"adxStrength"`
	MAStructure MAStructure   `json:"maStructure"`
	PriceVsMA   PricePosition `json:"priceVsMA100"`
}

type MomentumResult struct {
	Points int          `json:"points"`
	RSI    float64      `json:"rsi"`
	Zone   MomentumZone `json:"zone"`
	Status string       `json:"status"`
}

type StructureResult struct {
	Points        int      `json:"points"`
	FibCheck      FibCheck `json:"fibCheck"`
	FibValue      float64  `json:"fibValue"`
	Distance      float64  `json:"distance"`
	DistanceInATR float64  `json:"distanceInATR"`
	ForceWait     bool     `json:"forceWait"`
}

type RiskResult struct {
	Points       int            `json:"points"`
	Assessment   RiskAssessment `json:"assessment"`
	ATRPercent   float64        `json:"atrPercent"`
	StopLossRisk float64        `json:"stopLossRisk"`
	ForceWait    bool           `json:"forceWait"`
}

// TradeLevels is only set for LONG and SHORT decisions.
type TradeLevels struct {
	EntryPrice float64 `json:"entryPrice"`
	TakeProfit float64 `json:"takeProfit"`
	StopLoss   float64 `json:"stopLoss"`
}

// Signal is the output of one engine evaluation for one coin.
type Signal struct {
	ID            string          `json:"id,omitempty"`
	Coin          Coin            `json:"coin"`
	Decision      Decision        `json:"decision"`
	Score         int             `json:"score"`
	ShowInUI      bool            `json:"showInUI"`
	Trend         TrendResult     `json:"trend"`
	Momentum      MomentumResult  `json:"momentum"`
	Structure     StructureResult `json:"structure"`
	Risk          RiskResult      `json:"risk"`
	TradeLevels   *TradeLevels    `json:"tradeLevels,omitempty"`
	Justification string          `json:"justification"`
	CalculatedAt  time.Time       `json:"calculatedAt"`
}

type ChangeType string

const (
	ChangeNewSignal     ChangeType = "NEW_SIGNAL"
	ChangeDecision      ChangeType = "DECISION_CHANGE"
	ChangeScoreIncrease ChangeType = "SCORE_INCREASE"
	ChangeScoreDecrease ChangeType = "SCORE_DECREASE"
	ChangeNone          ChangeType = "NO_CHANGE"
)

type Threshold string

const (
	ThresholdNone      Threshold = ""
	ThresholdWatchlist Threshold = "WATCHLIST"
	ThresholdAction    Threshold = "ACTION"
)

// SignalChange describes how a new signal differs from the previous one for the same coin.
type SignalChange struct {
	CoinSymbol       string     `json:"coinSymbol"`
	ChangeType       ChangeType `json:"changeType"`
	OldScore         *int       `json:"oldScore,omitempty"`
	NewScore         int        `json:"newScore"`
	OldDecision      *Decision  `json:"oldDecision,omitempty"`
	NewDecision      Decision   `json:"newDecision"`
	CrossedThreshold Threshold  `json:"crossedThreshold,omitempty"`
}

// SignalAlert is one notification attempt for a signal change.
type SignalAlert struct {
	ID        string       `json:"id"`
	Channel   string       `json:"channel"`
	Change    SignalChange `json:"change"`
	Price     float64      `json:"price"`
	Error     string       `json:"error,omitempty"`
	SentAt    *time.Time   `json:"sentAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
