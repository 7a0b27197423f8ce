// Command tarotbot runs the tarot fortune Telegram bot: the entitlement
// engine, the chosen storage backend, the Stripe payment webhook, and the
// morning broadcaster, all under one process.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/astrelia/tarotbot/internal/bot"
	"github.com/astrelia/tarotbot/internal/config"
	"github.com/astrelia/tarotbot/internal/server"
	"github.com/astrelia/tarotbot/pkg/billing"
	stripeprovider "github.com/astrelia/tarotbot/pkg/billing/stripe"
	"github.com/astrelia/tarotbot/pkg/content"
	"github.com/astrelia/tarotbot/pkg/fortune"
	zerologadapter "github.com/astrelia/tarotbot/pkg/fortune/logger/zerolog"
	prommetrics "github.com/astrelia/tarotbot/pkg/fortune/metrics/prometheus"
	filestore "github.com/astrelia/tarotbot/storage/file"
	memorystore "github.com/astrelia/tarotbot/storage/memory"
	postgresstore "github.com/astrelia/tarotbot/storage/postgres"
	redisstore "github.com/astrelia/tarotbot/storage/redis"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("configuration error")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Store).Msg("storage init failed")
	}
	defer cleanup()

	registry := prometheus.NewRegistry()

	engine, err := fortune.NewEngine(store, fortune.Config{
		Deck:           content.Deck,
		Spreads:        content.Spreads,
		CompatReadings: content.CompatReadings,
		YesNoAnswers:   content.YesNoAnswers,
		Logger:         zerologadapter.NewLogger(logger),
		Metrics:        prommetrics.NewMetrics(registry, "tarotbot"),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("engine init failed")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram connect failed")
	}

	b := bot.New(api, engine, fortune.NewGuard(), nil, content.Deck, bot.Config{
		ChannelUsername: cfg.ChannelUsername,
		AdminIDs:        cfg.AdminIDs,
		RitualStepDelay: cfg.RitualStepDelay,
		OracleSubmitURL: cfg.OracleSubmitURL,
	}, logger)

	var payments billing.Provider
	if cfg.PaymentsConfigured() {
		provider, err := stripeprovider.NewProvider(stripeprovider.Config{
			Config: billing.Config{
				Engine:     engine,
				Notifier:   b,
				SuccessURL: cfg.SuccessURL,
				CancelURL:  cfg.CancelURL,
				ForwardURL: cfg.ForwardURL,
				Logger:     zerologadapter.NewLogger(logger),
			},
			StripeAPIKey:        cfg.StripeAPIKey,
			StripeWebhookSecret: cfg.StripeWebhookSecret,
			Prices: map[billing.Tariff]stripeprovider.Price{
				billing.TariffSingle:  {Amount: cfg.PriceSingle, Description: "One question for the Oracle"},
				billing.TariffPackage: {Amount: cfg.PricePackage, Description: "Six questions for the Oracle"},
			},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("stripe init failed")
		}
		payments = provider
		b.SetPayments(provider)
	} else {
		logger.Warn().Msg("stripe not configured, oracle checkout disabled")
	}

	srv := server.New(server.Config{Addr: cfg.HTTPAddr}, payments, registry, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	go bot.NewBroadcaster(b, fortune.SystemClock{}).Run(ctx)

	b.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}

	logger.Info().Msg("bye")
}

// buildStore constructs the configured storage backend and a cleanup for it.
func buildStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (fortune.Store, func(), error) {
	noop := func() {}

	switch cfg.Store {
	case config.StoreMemory:
		return memorystore.New(), noop, nil

	case config.StoreFile:
		return filestore.New(cfg.FilePath,
			filestore.WithLogger(zerologadapter.NewLogger(logger))), noop, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		store, err := redisstore.New(client, redisstore.DefaultConfig())
		if err != nil {
			return nil, nil, err
		}
		return store, func() { client.Close() }, nil

	case config.StorePostgres:
		pgCfg := postgresstore.DefaultConfig()
		pgCfg.ConnectionString = cfg.PostgresDSN
		store, err := postgresstore.New(ctx, pgCfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}
