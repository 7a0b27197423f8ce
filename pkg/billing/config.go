package billing

import (
	"net/http"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Config defines the standard configuration all providers should accept
type Config struct {
	// Engine is the entitlement engine credited after a reconciled payment.
	Engine *fortune.Engine

	// Notifier is told about successful payments; nil disables notification.
	Notifier Notifier

	// SuccessURL and CancelURL are the checkout redirect targets.
	SuccessURL string
	CancelURL  string

	// ForwardURL, when set, receives a copy of every successful payment
	// event as a JSON POST for downstream automation.
	ForwardURL string

	// HTTPClient is an optional HTTP client for outbound calls (event
	// forwarding). If nil, a default client with 10s timeout is used.
	HTTPClient *http.Client

	// Logger is used for structured logging (default: NoopLogger).
	Logger fortune.Logger

	// Metrics is an optional metrics collector for webhook and checkout
	// operations. If nil, metrics are silently ignored.
	Metrics Metrics
}
