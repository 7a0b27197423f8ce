package billing

import (
	"context"
	"net/http"
)

// Tariff identifies one of the Oracle pricing options.
type Tariff string

const (
	// TariffSingle is one Oracle question
	TariffSingle Tariff = "single"
	// TariffPackage is a pack of six Oracle questions
	TariffPackage Tariff = "package"
)

// Credits returns the number of Oracle credits the tariff grants.
func (t Tariff) Credits() int {
	if t == TariffPackage {
		return 6
	}
	return 1
}

// CheckoutRequest describes one redirect-based checkout to create.
type CheckoutRequest struct {
	// UserID is the chat user identifier, carried through provider metadata
	// so the webhook can reconcile the payment.
	UserID string

	// Question is the user's Oracle question, carried through metadata.
	Question string

	// Tariff selects the pricing option.
	Tariff Tariff
}

// Provider is the generic interface a payment backend must implement. The
// bot only ever sees a redirect URL and, later, a reconciled PaymentEvent
// delivered through the webhook.
type Provider interface {
	// Name returns the provider name (e.g. "stripe")
	Name() string

	// CheckoutURL creates a redirect-based checkout and returns its URL.
	CheckoutURL(ctx context.Context, req CheckoutRequest) (string, error)

	// WebhookHandler returns the HTTP handler that processes asynchronous
	// payment events. The implementation handles signature validation,
	// parsing, credit grants, and notification internally.
	WebhookHandler() http.Handler
}

// Notifier is told about reconciled payments so the chat transport can
// message the user. Implemented by the bot.
type Notifier interface {
	NotifyPaymentSucceeded(ctx context.Context, userID, question string, credits int) error
}
