package engine

import (
	"fmt"
	"math"
)

// Config controls every stage of scoring. Use DefaultConfig and override fields.
type Config struct {
	Thresholds Thresholds      `json:"thresholds" toml:"thresholds"`
	Weights    Weights         `json:"weights" toml:"weights"`
	Trend      TrendConfig     `json:"trend" toml:"trend"`
	Momentum   MomentumConfig  `json:"momentum" toml:"momentum"`
	Structure  StructureConfig `json:"structure" toml:"structure"`
	Risk       RiskConfig      `json:"risk" toml:"risk"`
	Levels     LevelsConfig    `json:"levels" toml:"levels"`
}

type Thresholds struct {
	Action    float64 `json:"action" toml:"action"`
	Watchlist float64 `json:"watchlist" toml:"watchlist"`
}

// Weights are the point budgets per dimension and must sum to 100.
type Weights struct {
	Trend     float64 `json:"trend" toml:"trend"`
	Momentum  float64 `json:"momentum" toml:"momentum"`
	Structure float64 `json:"structure" toml:"structure"`
	Risk      float64 `json:"risk" toml:"risk"`
}

type TrendConfig struct {
	ADXMinimum      float64 `json:"adxMinimum" toml:"adx_minimum"`
	ADXStrong       float64 `json:"adxStrong" toml:"adx_strong"`
	RelaxedReversal bool    `json:"relaxedReversal" toml:"relaxed_reversal"`
	ReversalADX     float64 `json:"reversalADX" toml:"reversal_adx"`
	BonusMA200      float64 `json:"bonusMA200" toml:"bonus_ma200"`
	BonusFib        float64 `json:"bonusFib" toml:"bonus_fib"`
	BonusAlignment  float64 `json:"bonusAlignment" toml:"bonus_alignment"`
}

// MomentumConfig shapes the RSI decay curves outside the healthy band.
type MomentumConfig struct {
	HealthyLow       float64 `json:"healthyLow" toml:"healthy_low"`
	HealthyHigh      float64 `json:"healthyHigh" toml:"healthy_high"`
	StrongTrendShare float64 `json:"strongTrendShare" toml:"strong_trend_share"`
	ExtendedShare    float64 `json:"extendedShare" toml:"extended_share"`
	DecaySpan        float64 `json:"decaySpan" toml:"decay_span"`
	Floor            float64 `json:"floor" toml:"floor"`
	CounterShare     float64 `json:"counterShare" toml:"counter_share"`
	CounterSpan      float64 `json:"counterSpan" toml:"counter_span"`
}

type StructureConfig struct {
	FibToleranceATR float64 `json:"fibToleranceATR" toml:"fib_tolerance_atr"`
	SafeZoneATR     float64 `json:"safeZoneATR" toml:"safe_zone_atr"`
	GradedDecay     bool    `json:"gradedDecay" toml:"graded_decay"`
}

type RiskConfig struct {
	MaxStopLoss       float64 `json:"maxStopLoss" toml:"max_stop_loss"`
	VolatilityExtreme float64 `json:"volatilityExtreme" toml:"volatility_extreme"`
	ElevatedPercent   float64 `json:"elevatedPercent" toml:"elevated_percent"`
}

// LevelsConfig holds the ATR multiples used for stops and fallback targets.
type LevelsConfig struct {
	StopLossATR   float64 `json:"stopLossATR" toml:"stop_loss_atr"`
	TakeProfitATR float64 `json:"takeProfitATR" toml:"take_profit_atr"`
}

func DefaultConfig() Config {
	return Config{
		Thresholds: Thresholds{Action: 75, Watchlist: 50},
		Weights:    Weights{Trend: 40, Momentum: 25, Structure: 20, Risk: 15},
		Trend: TrendConfig{
			ADXMinimum:      20,
			ADXStrong:       35,
			RelaxedReversal: true,
			ReversalADX:     30,
			BonusMA200:      5,
			BonusFib:        5,
			BonusAlignment:  3,
		},
		Momentum: MomentumConfig{
			HealthyLow:       40,
			HealthyHigh:      60,
			StrongTrendShare: 0.9,
			ExtendedShare:    0.8,
			DecaySpan:        20,
			Floor:            5,
			CounterShare:     0.6,
			CounterSpan:      30,
		},
		Structure: StructureConfig{FibToleranceATR: 5, SafeZoneATR: 0.5, GradedDecay: true},
		Risk:      RiskConfig{MaxStopLoss: 6, VolatilityExtreme: 4, ElevatedPercent: 2.5},
		Levels:    LevelsConfig{StopLossATR: 2, TakeProfitATR: 3},
	}
}

// ConfigError reports the first field that violates a configuration invariant.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid signal config: %s %s", e.Field, e.Reason)
}

// Validate checks that every numeric field is finite and non-negative and that the
// thresholds and weights are consistent.
func (c Config) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"thresholds.action", c.Thresholds.Action},
		{"thresholds.watchlist", c.Thresholds.Watchlist},
		{"weights.trend", c.Weights.Trend},
		{"weights.momentum", c.Weights.Momentum},
		{"weights.structure", c.Weights.Structure},
		{"weights.risk", c.Weights.Risk},
		{"trend.adxMinimum", c.Trend.ADXMinimum},
		{"trend.adxStrong", c.Trend.ADXStrong},
		{"trend.reversalADX", c.Trend.ReversalADX},
		{"trend.bonusMA200", c.Trend.BonusMA200},
		{"trend.bonusFib", c.Trend.BonusFib},
		{"trend.bonusAlignment", c.Trend.BonusAlignment},
		{"momentum.healthyLow", c.Momentum.HealthyLow},
		{"momentum.healthyHigh", c.Momentum.HealthyHigh},
		{"momentum.strongTrendShare", c.Momentum.StrongTrendShare},
		{"momentum.extendedShare", c.Momentum.ExtendedShare},
		{"momentum.decaySpan", c.Momentum.DecaySpan},
		{"momentum.floor", c.Momentum.Floor},
		{"momentum.counterShare", c.Momentum.CounterShare},
		{"momentum.counterSpan", c.Momentum.CounterSpan},
		{"structure.fibToleranceATR", c.Structure.FibToleranceATR},
		{"structure.safeZoneATR", c.Structure.SafeZoneATR},
		{"risk.maxStopLoss", c.Risk.MaxStopLoss},
		{"risk.volatilityExtreme", c.Risk.VolatilityExtreme},
		{"risk.elevatedPercent", c.Risk.ElevatedPercent},
		{"levels.stopLossATR", c.Levels.StopLossATR},
		{"levels.takeProfitATR", c.Levels.TakeProfitATR},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigError{Field: f.name, Reason: "must be finite"}
		}
		if f.value < 0 {
			return &ConfigError{Field: f.name, Reason: "must not be negative"}
		}
	}

	if c.Thresholds.Action < c.Thresholds.Watchlist {
		return &ConfigError{Field: "thresholds.action", Reason: "must be >= thresholds.watchlist"}
	}
	if c.Thresholds.Action > 100 {
		return &ConfigError{Field: "thresholds.action", Reason: "must be <= 100"}
	}
	sum := c.Weights.Trend + c.Weights.Momentum + c.Weights.Structure + c.Weights.Risk
	if math.Abs(sum-100) > 1e-9 {
		return &ConfigError{Field: "weights", Reason: fmt.Sprintf("must sum to 100, got %g", sum)}
	}
	if c.Trend.ADXStrong < c.Trend.ADXMinimum {
		return &ConfigError{Field: "trend.adxStrong", Reason: "must be >= trend.adxMinimum"}
	}
	if c.Momentum.HealthyHigh < c.Momentum.HealthyLow {
		return &ConfigError{Field: "momentum.healthyHigh", Reason: "must be >= momentum.healthyLow"}
	}
	if c.Momentum.StrongTrendShare > 1 || c.Momentum.ExtendedShare > 1 || c.Momentum.CounterShare > 1 {
		return &ConfigError{Field: "momentum", Reason: "shares must be <= 1"}
	}
	if c.Risk.VolatilityExtreme < c.Risk.ElevatedPercent {
		return &ConfigError{Field: "risk.volatilityExtreme", Reason: "must be >= risk.elevatedPercent"}
	}
	return nil
}
