package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"job-alert-bot/internal/api/providers"
	"job-alert-bot/internal/bot"
	"job-alert-bot/internal/bot/handlers"
	"job-alert-bot/internal/bot/middleware"
	"job-alert-bot/internal/config"
	"job-alert-bot/internal/engine"
	"job-alert-bot/internal/logger"
	"job-alert-bot/internal/scheduler"
	"job-alert-bot/internal/storage/redis"
	"job-alert-bot/internal/storage/sqldb"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("bot stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

// run wires the components and blocks until ctx is cancelled. Errors are
// returned rather than fatal so deferred cleanup always runs.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting job alert bot",
		zap.String("log_level", cfg.LogLevel),
		zap.String("db_driver", cfg.DBDriver),
		zap.Duration("tick_interval", cfg.TickInterval),
	)

	store, err := sqldb.Open(cfg.DBDriver, cfg.DBDSN, log.Named("store"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	log.Info("database ready")

	// Redis is optional: without it searches are not cached and commands
	// are not rate limited.
	var (
		resultCache providers.ResultCache
		counter     middleware.Counter
	)
	if cfg.RedisAddr != "" {
		cache, err := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log.Named("redis"))
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer cache.Close()

		resultCache = cache
		counter = cache
		log.Info("Redis connected successfully")
	} else {
		log.Info("REDIS_ADDR not set, search cache and rate limits disabled")
	}

	registry := newRegistry(cfg, resultCache, log)
	log.Info("providers ready", zap.Strings("available", registry.AvailableTags()))

	tgBot, err := bot.New(cfg, log)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	eng := engine.New(store, store, registry, tgBot.Channel(), engine.Config{
		MaxKeywords:     cfg.MaxKeywordsPerRun,
		MaxSendPerRun:   cfg.MaxSendPerRun,
		ProviderTimeout: cfg.ProviderTimeout,
	}, log.Named("engine"))

	tgBot.Setup(&handlers.Context{
		Store:   store,
		Sources: registry,
		Engine:  eng,
		Logger:  log,
	}, counter)

	sched := scheduler.New(store, eng, scheduler.Config{
		TickInterval: cfg.TickInterval,
		CycleTimeout: cfg.CycleTimeout,
		Concurrency:  cfg.Concurrency,
		Retention:    cfg.Retention(),
		StartDelay:   scheduler.DefaultStartDelay,
	}, log.Named("scheduler"))

	sched.Start(ctx)

	log.Info("bot is running...")
	log.Info("press Ctrl+C to stop")

	if err := tgBot.Start(ctx); err != nil {
		log.Error("bot stopped with error", zap.Error(err))
	}

	log.Info("shutting down gracefully...")

	sched.Stop()

	log.Info("bot stopped")

	return nil
}

func newRegistry(cfg *config.Config, cache providers.ResultCache, log *zap.Logger) *providers.Registry {
	opts := providers.Options{
		Timeout:      cfg.ProviderTimeout,
		RatePerSec:   cfg.ProviderRatePerSec,
		ResultsLimit: cfg.ResultsPerProvider,
	}
	plog := log.Named("providers")

	gateways := []providers.Gateway{
		providers.NewRemotive(cfg.RemotiveBaseURL, opts, plog),
		providers.NewAdzuna(cfg.AdzunaBaseURL, cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry, opts, plog),
		providers.NewJooble(cfg.JoobleBaseURL, cfg.JoobleAPIKey, opts, plog),
	}
	for i, gw := range gateways {
		gateways[i] = providers.Cached(gw, cache, cfg.SearchCacheTTL, plog)
	}

	return providers.NewRegistry(gateways...)
}
