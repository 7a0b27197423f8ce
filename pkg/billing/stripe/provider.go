// Package stripe implements the billing.Provider interface on Stripe
// Checkout: the bot sends the user a redirect URL, Stripe reports the
// outcome asynchronously, and the webhook reconciles the payment into
// Oracle credits.
package stripe

import (
	"net/http"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/astrelia/tarotbot/pkg/billing"
	"github.com/astrelia/tarotbot/pkg/fortune"
)

const (
	providerName       = "stripe"
	defaultHTTPTimeout = 10 * time.Second
	defaultCurrency    = "rub"
)

// Price is the checkout amount for one tariff, in the smallest currency unit.
type Price struct {
	Amount      int64
	Description string
}

// Config extends billing.Config with Stripe-specific options
type Config struct {
	billing.Config // Base config (Engine, Notifier, URLs, etc.)

	// Stripe-specific
	StripeAPIKey        string
	StripeWebhookSecret string

	// Currency is the ISO currency code for checkout prices (default: "rub").
	Currency string

	// Prices maps tariffs to their checkout amounts. A tariff without a
	// price cannot be checked out.
	Prices map[billing.Tariff]Price
}

// Provider implements the billing.Provider interface for Stripe
type Provider struct {
	engine        *fortune.Engine
	config        Config
	httpClient    *http.Client
	stripeClient  *stripe.Client
	webhookSecret []byte
	notifier      billing.Notifier
	logger        fortune.Logger
	metrics       billing.Metrics
}

// NewProvider creates a new Stripe billing provider
func NewProvider(config Config) (*Provider, error) {
	if config.Engine == nil {
		return nil, billing.ErrProviderNotConfigured
	}

	apiKey := strings.TrimSpace(config.StripeAPIKey)
	if apiKey == "" {
		return nil, billing.ErrProviderNotConfigured
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if config.Currency == "" {
		config.Currency = defaultCurrency
	}
	logger := config.Logger
	if logger == nil {
		logger = &fortune.NoopLogger{}
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &billing.NoopMetrics{}
	}

	return &Provider{
		engine:        config.Engine,
		config:        config,
		httpClient:    httpClient,
		stripeClient:  stripe.NewClient(apiKey),
		webhookSecret: []byte(strings.TrimSpace(config.StripeWebhookSecret)),
		notifier:      config.Notifier,
		logger:        logger,
		metrics:       metrics,
	}, nil
}

// Name implements billing.Provider
func (p *Provider) Name() string { return providerName }

// WebhookHandler implements billing.Provider
func (p *Provider) WebhookHandler() http.Handler {
	return http.HandlerFunc(p.handleWebhook)
}
