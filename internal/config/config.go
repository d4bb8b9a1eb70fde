package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration read from the environment.
type Config struct {
	Port        string
	CronSecret  string
	DatabaseURL string

	// SignalConfigPath points at an optional TOML file with scoring overrides.
	SignalConfigPath string

	Redis      RedisConfig
	Binance    BinanceConfig
	Job        JobConfig
	Alerts     AlertConfig
	Indicators IndicatorConfig
	Log        LogConfig
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	LatestTTL time.Duration
}

// Enabled reports whether a Redis address was configured.
func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type BinanceConfig struct {
	BaseURL       string
	SwingInterval string
	ScalpInterval string
	KlineLimit    int
	PriceTTL      time.Duration
	// PriceMaxAge bounds how long an expired price stays available as a fallback.
	PriceMaxAge time.Duration
}

type JobConfig struct {
	Interval   time.Duration
	Timeout    time.Duration
	Workers    int
	Symbols    []string
	TopN       int
	RunOnStart bool
}

type AlertConfig struct {
	EmailRecipients         []string
	ResendAPIKey            string
	ResendFrom              string
	ResendURL               string
	Cooldown                time.Duration
	FirebaseCredentialsPath string
	FirebaseCredentialsJSON string
}

type IndicatorConfig struct {
	Freshness time.Duration
	// SweepInterval is how often the in-process price and indicator caches are pruned.
	SweepInterval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads a .env file when present, then the process environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	return &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		CronSecret:       os.Getenv("CRON_SECRET"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SignalConfigPath: os.Getenv("SIGNAL_CONFIG_PATH"),

		Redis: RedisConfig{
			Addr:      os.Getenv("REDIS_ADDR"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        getEnvInt("REDIS_DB", 0),
			LatestTTL: getEnvDuration("REDIS_LATEST_TTL", 6*time.Hour),
		},

		Binance: BinanceConfig{
			BaseURL:       getEnvOrDefault("BINANCE_BASE_URL", "https://fapi.binance.com"),
			SwingInterval: getEnvOrDefault("SWING_INTERVAL", "4h"),
			ScalpInterval: getEnvOrDefault("SCALP_INTERVAL", "15m"),
			KlineLimit:    getEnvInt("KLINE_LIMIT", 300),
			PriceTTL:      getEnvDuration("PRICE_CACHE_TTL", 30*time.Second),
			PriceMaxAge:   getEnvDuration("PRICE_STALE_MAX_AGE", time.Hour),
		},

		Job: JobConfig{
			Interval:   getEnvDuration("SIGNAL_JOB_INTERVAL", 15*time.Minute),
			Timeout:    getEnvDuration("SIGNAL_JOB_TIMEOUT", 5*time.Minute),
			Workers:    getEnvInt("SIGNAL_JOB_WORKERS", 10),
			Symbols:    getEnvList("TRACKED_SYMBOLS"),
			TopN:       getEnvInt("TRACKED_TOP_N", 30),
			RunOnStart: getEnvBool("SIGNAL_JOB_RUN_ON_START", true),
		},

		Alerts: AlertConfig{
			EmailRecipients:         getEnvList("ALERT_EMAILS"),
			ResendAPIKey:            os.Getenv("RESEND_API_KEY"),
			ResendFrom:              getEnvOrDefault("RESEND_FROM", "Signals <onboarding@resend.dev>"),
			ResendURL:               getEnvOrDefault("RESEND_API_URL", "https://api.resend.com/"),
			Cooldown:                getEnvDuration("ALERT_COOLDOWN", 30*time.Minute),
			FirebaseCredentialsPath: os.Getenv("FIREBASE_CREDENTIALS_PATH"),
			FirebaseCredentialsJSON: os.Getenv("FIREBASE_CREDENTIALS_JSON"),
		},

		Indicators: IndicatorConfig{
			Freshness:     getEnvDuration("INDICATOR_FRESHNESS", time.Minute),
			SweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		},

		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
