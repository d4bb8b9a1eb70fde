package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"signal-backend/internal/engine"
)

// LoadSignalConfig builds the scoring configuration with priority
// defaults -> TOML file -> SIGNAL_* environment overrides, then validates it.
// An empty path skips the file.
func LoadSignalConfig(path string) (engine.Config, error) {
	cfg := engine.DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read signal config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse signal config %s: %w", path, err)
		}
	}

	applySignalEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applySignalEnvOverrides(cfg *engine.Config) {
	cfg.Thresholds.Action = getEnvFloat("SIGNAL_ACTION_THRESHOLD", cfg.Thresholds.Action)
	cfg.Thresholds.Watchlist = getEnvFloat("SIGNAL_WATCHLIST_THRESHOLD", cfg.Thresholds.Watchlist)
	cfg.Trend.ADXMinimum = getEnvFloat("SIGNAL_ADX_MINIMUM", cfg.Trend.ADXMinimum)
	cfg.Trend.ADXStrong = getEnvFloat("SIGNAL_ADX_STRONG", cfg.Trend.ADXStrong)
	cfg.Trend.RelaxedReversal = getEnvBool("SIGNAL_RELAXED_REVERSAL", cfg.Trend.RelaxedReversal)
	cfg.Structure.FibToleranceATR = getEnvFloat("SIGNAL_FIB_TOLERANCE_ATR", cfg.Structure.FibToleranceATR)
	cfg.Structure.SafeZoneATR = getEnvFloat("SIGNAL_SAFE_ZONE_ATR", cfg.Structure.SafeZoneATR)
	cfg.Structure.GradedDecay = getEnvBool("SIGNAL_GRADED_DECAY", cfg.Structure.GradedDecay)
	cfg.Risk.MaxStopLoss = getEnvFloat("SIGNAL_MAX_STOP_LOSS", cfg.Risk.MaxStopLoss)
	cfg.Risk.VolatilityExtreme = getEnvFloat("SIGNAL_VOLATILITY_EXTREME", cfg.Risk.VolatilityExtreme)
}
