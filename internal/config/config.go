// Package config loads bot configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable via TAROT_STORE.
const (
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is the full process configuration.
type Config struct {
	// Telegram.
	BotToken        string
	ChannelUsername string
	AdminIDs        []int64

	// Storage.
	Store       string
	FilePath    string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	PostgresDSN string

	// Payments.
	StripeAPIKey        string
	StripeWebhookSecret string
	SuccessURL          string
	CancelURL           string
	ForwardURL          string
	PriceSingle         int64
	PricePackage        int64

	// Oracle.
	OracleSubmitURL string

	// HTTP.
	HTTPAddr string

	// Misc.
	LogLevel        string
	RitualStepDelay time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in if present; real environment variables win.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChannelUsername: os.Getenv("TAROT_CHANNEL"),

		Store:       getEnv("TAROT_STORE", StoreFile),
		FilePath:    getEnv("TAROT_STORE_FILE", "users.json"),
		RedisAddr:   getEnv("TAROT_REDIS_ADDR", "localhost:6379"),
		RedisPass:   os.Getenv("TAROT_REDIS_PASSWORD"),
		PostgresDSN: os.Getenv("TAROT_POSTGRES_DSN"),

		StripeAPIKey:        os.Getenv("STRIPE_API_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		SuccessURL:          getEnv("TAROT_SUCCESS_URL", "https://t.me"),
		CancelURL:           getEnv("TAROT_CANCEL_URL", "https://t.me"),
		ForwardURL:          os.Getenv("TAROT_PAYMENT_FORWARD_URL"),

		OracleSubmitURL: os.Getenv("TAROT_ORACLE_SUBMIT_URL"),

		HTTPAddr: getEnv("TAROT_HTTP_ADDR", ":8080"),
		LogLevel: getEnv("TAROT_LOG_LEVEL", "info"),
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	var err error
	if cfg.AdminIDs, err = parseIDList(os.Getenv("TAROT_ADMIN_IDS")); err != nil {
		return Config{}, fmt.Errorf("TAROT_ADMIN_IDS: %w", err)
	}
	if cfg.RedisDB, err = getEnvInt("TAROT_REDIS_DB", 0); err != nil {
		return Config{}, err
	}

	// Prices are minor units (kopecks): 25 rub single, 130 rub for six.
	if cfg.PriceSingle, err = getEnvInt64("TAROT_PRICE_SINGLE", 2500); err != nil {
		return Config{}, err
	}
	if cfg.PricePackage, err = getEnvInt64("TAROT_PRICE_PACKAGE", 13000); err != nil {
		return Config{}, err
	}

	if cfg.RitualStepDelay, err = getEnvDuration("TAROT_RITUAL_DELAY", 1300*time.Millisecond); err != nil {
		return Config{}, err
	}

	switch cfg.Store {
	case StoreFile, StoreRedis, StorePostgres, StoreMemory:
	default:
		return Config{}, fmt.Errorf("TAROT_STORE: unknown backend %q", cfg.Store)
	}
	if cfg.Store == StorePostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("TAROT_POSTGRES_DSN is required for the postgres backend")
	}

	return cfg, nil
}

// PaymentsConfigured reports whether Stripe can be wired at all.
func (c Config) PaymentsConfigured() bool {
	return c.StripeAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
