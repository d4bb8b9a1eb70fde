package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"signal-backend/internal/config"
	delivery "signal-backend/internal/delivery/http"
	"signal-backend/internal/delivery/websocket"
	"signal-backend/internal/domain"
	"signal-backend/internal/infrastructure/binance"
	"signal-backend/internal/infrastructure/cache"
	"signal-backend/internal/infrastructure/db"
	"signal-backend/internal/infrastructure/email"
	"signal-backend/internal/infrastructure/fcm"
	"signal-backend/internal/logger"
	"signal-backend/internal/repository"
	"signal-backend/internal/usecase"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	engineCfg, err := config.LoadSignalConfig(cfg.SignalConfigPath)
	if err != nil {
		return fmt.Errorf("invalid signal configuration: %w", err)
	}

	// 1. Repositories
	stores, cleanup, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	// 2. Market data
	binanceClient := binance.NewClient(cfg.Binance.BaseURL)
	prices := binance.NewPriceFeed(binanceClient, cfg.Binance.PriceTTL, cache.SystemClock, log)
	indicatorService := usecase.NewIndicatorService(binanceClient, stores.indicators, usecase.IndicatorServiceConfig{
		SwingInterval: cfg.Binance.SwingInterval,
		ScalpInterval: cfg.Binance.ScalpInterval,
		KlineLimit:    cfg.Binance.KlineLimit,
		Freshness:     cfg.Indicators.Freshness,
	}, cache.SystemClock, log)
	if cfg.Indicators.SweepInterval > 0 {
		go prices.SweepStale(ctx, cfg.Indicators.SweepInterval, cfg.Binance.PriceMaxAge)
		go indicatorService.SweepCaches(ctx, cfg.Indicators.SweepInterval)
	}

	// 3. Notifications
	fcmClient, err := fcm.NewClient(ctx, cfg.Alerts.FirebaseCredentialsPath, cfg.Alerts.FirebaseCredentialsJSON, log)
	if err != nil {
		return fmt.Errorf("initialize FCM: %w", err)
	}
	resend := email.NewResendClient(cfg.Alerts.ResendAPIKey, cfg.Alerts.ResendFrom, cfg.Alerts.ResendURL)
	if !resend.IsEnabled() {
		log.Warn().Msg("RESEND_API_KEY not set, email alerts disabled")
	}
	notifier := usecase.NewNotificationService(stores.alerts, cfg.Alerts.Cooldown, cache.SystemClock, log,
		usecase.NewEmailChannel(resend, cfg.Alerts.EmailRecipients),
		usecase.NewPushChannel(fcmClient, stores.tokens),
	)

	// 4. Signal job
	symbols := usecase.StaticSymbols(cfg.Job.Symbols)
	if len(cfg.Job.Symbols) == 0 {
		topN := cfg.Job.TopN
		symbols = func(ctx context.Context) ([]string, error) {
			return binanceClient.TopSymbolsByVolume(ctx, topN)
		}
	}
	job := usecase.NewSignalJob(symbols, indicatorService, prices, stores.signals, notifier, engineCfg, usecase.JobConfig{
		Interval:   cfg.Job.Interval,
		Timeout:    cfg.Job.Timeout,
		Workers:    cfg.Job.Workers,
		RunOnStart: cfg.Job.RunOnStart,
	}, cache.SystemClock, log)
	if cfg.Job.Interval > 0 {
		go job.Run(ctx)
	}

	// 5. Delivery
	wsHandler := websocket.NewHandler(stores.signals, 5*time.Second, log)
	router := delivery.NewRouter(delivery.Handlers{
		Signals:   delivery.NewSignalHandler(stores.signals, engineCfg, log),
		Cron:      delivery.NewCronHandler(job, cfg.CronSecret, log),
		Analysis:  delivery.NewAnalysisHandler(indicatorService, prices, log),
		Tokens:    delivery.NewTokenHandler(stores.tokens, log),
		Alerts:    delivery.NewAlertHandler(stores.alerts, log),
		Websocket: wsHandler.Handle,
	}, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

type stores struct {
	signals    domain.SignalRepository
	indicators domain.IndicatorRepository
	alerts     domain.AlertRepository
	tokens     domain.DeviceTokenStore
}

// openStores uses Postgres when DATABASE_URL is set and process memory otherwise. Redis,
// when configured, caches the latest signal per coin in front of either.
func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (stores, func(), error) {
	var s stores
	var closers []func()

	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolConfigFromEnv())
		if err != nil {
			return s, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return s, nil, fmt.Errorf("migrate database: %w", err)
		}
		closers = append(closers, pool.Close)

		s = stores{
			signals:    repository.NewPostgresSignalRepository(pool),
			indicators: repository.NewPostgresIndicatorRepository(pool),
			alerts:     repository.NewPostgresAlertRepository(pool),
			tokens:     repository.NewPostgresTokenRepository(pool),
		}
		log.Info().Msg("using Postgres storage")
	} else {
		s = stores{
			signals:    repository.NewInMemorySignalRepository(),
			indicators: repository.NewInMemoryIndicatorRepository(),
			alerts:     repository.NewInMemoryAlertRepository(),
			tokens:     repository.NewTokenRepository(),
		}
		log.Warn().Msg("DATABASE_URL not set, using in-memory storage")
	}

	if cfg.Redis.Enabled() {
		store, err := cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without signal cache")
		} else {
			closers = append(closers, func() { store.Close() })
			s.signals = repository.NewCachedSignalRepository(s.signals, store, cfg.Redis.LatestTTL, log)
		}
	}

	return s, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
