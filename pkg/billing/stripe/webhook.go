package stripe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/astrelia/tarotbot/pkg/billing"
	"github.com/astrelia/tarotbot/pkg/billing/internal"
	"github.com/astrelia/tarotbot/pkg/fortune"
)

const maxWebhookBody = 256 * 1024

func fortuneField(key, value string) fortune.Field {
	return fortune.Field{Key: key, Value: value}
}

// handleWebhook processes incoming Stripe webhook events
func (p *Provider) handleWebhook(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if len(p.webhookSecret) == 0 {
		http.Error(w, "webhook not configured", http.StatusServiceUnavailable)
		return
	}

	body, err := internal.ReadBodyStrict(w, r, maxWebhookBody)
	if err != nil {
		if errors.Is(err, internal.ErrPayloadTooLarge) {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			p.metrics.RecordWebhookError(providerName, "payload_too_large")
		} else {
			http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
			p.metrics.RecordWebhookError(providerName, "invalid_payload")
		}
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		sig = r.Header.Get("stripe-signature")
	}

	event, err := stripe.ConstructEvent(body, sig, string(p.webhookSecret))
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		p.metrics.RecordWebhookError(providerName, "auth_failed")
		return
	}

	eventType := string(event.Type)
	if eventType == "" {
		eventType = "UNKNOWN"
	}

	if err := p.processWebhookEvent(r.Context(), &event); err != nil {
		http.Error(w, "failed to process webhook", http.StatusInternalServerError)
		p.metrics.RecordWebhookEvent(providerName, eventType, "error")
		p.metrics.RecordWebhookError(providerName, "processing_error")
		p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
		return
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		return
	}

	p.metrics.RecordWebhookEvent(providerName, eventType, "success")
	p.metrics.RecordWebhookProcessingDuration(providerName, eventType, time.Since(startTime))
}

// processWebhookEvent dispatches a verified webhook event
func (p *Provider) processWebhookEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		return p.handleCheckoutCompleted(ctx, event)
	default:
		// Unknown events are acknowledged so Stripe stops retrying them.
		p.logger.Debug("ignoring webhook event", fortuneField("type", string(event.Type)))
		return nil
	}
}

// handleCheckoutCompleted reconciles a completed checkout: credits the user,
// notifies their chat, and optionally forwards the event downstream.
func (p *Provider) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: %v", billing.ErrInvalidWebhookPayload, err)
	}

	userID := session.Metadata["user_id"]
	if userID == "" {
		// Nothing to reconcile; acknowledge rather than retry forever.
		p.logger.Warn("checkout session without user_id metadata",
			fortuneField("session_id", session.ID))
		return nil
	}
	question := session.Metadata["question"]
	tariff := billing.Tariff(session.Metadata["tariff"])
	if tariff != billing.TariffSingle && tariff != billing.TariffPackage {
		tariff = billing.TariffSingle
	}

	credits := tariff.Credits()
	balance := p.engine.AddOracleCredits(ctx, userID, credits)
	p.logger.Info("payment reconciled",
		fortuneField("user_id", userID),
		fortuneField("tariff", string(tariff)),
		fortune.Field{Key: "balance", Value: balance},
	)

	if p.notifier != nil {
		if err := p.notifier.NotifyPaymentSucceeded(ctx, userID, question, credits); err != nil {
			// The credits are already granted; a failed notification must
			// not make Stripe redeliver and double-credit.
			p.logger.Error("payment notification failed",
				fortuneField("user_id", userID),
				fortuneField("error", err.Error()))
		}
	}

	p.forwardEvent(ctx, event)
	return nil
}

// forwardEvent posts the raw event to the configured downstream automation
// URL. Best effort: failures are logged, never retried.
func (p *Provider) forwardEvent(ctx context.Context, event *stripe.Event) {
	if p.config.ForwardURL == "" {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.ForwardURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("event forward failed", fortuneField("error", err.Error()))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("event forward rejected",
			fortune.Field{Key: "status", Value: resp.StatusCode})
	}
}
