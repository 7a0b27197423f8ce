package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v83"

	"github.com/astrelia/tarotbot/pkg/billing"
)

// CheckoutURL creates a Stripe Checkout Session for one Oracle purchase and
// returns the redirect URL. The user id, question, and tariff ride along in
// session metadata so the webhook can reconcile the payment without any
// local pending-payment state.
func (p *Provider) CheckoutURL(ctx context.Context, req billing.CheckoutRequest) (string, error) {
	price, ok := p.config.Prices[req.Tariff]
	if !ok {
		p.metrics.RecordCheckout(providerName, string(req.Tariff), "error")
		return "", fmt.Errorf("%w: %s", billing.ErrTariffNotConfigured, req.Tariff)
	}

	startTime := time.Now()
	params := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(p.config.Currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(price.Description),
					},
					UnitAmount: stripe.Int64(price.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(p.config.SuccessURL),
		CancelURL:         stripe.String(p.config.CancelURL),
		ClientReferenceID: stripe.String(req.UserID),
	}

	// The webhook handler reads these back from the completed session.
	params.Metadata = map[string]string{
		"user_id":  req.UserID,
		"question": req.Question,
		"tariff":   string(req.Tariff),
	}

	session, err := p.stripeClient.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		p.metrics.RecordCheckout(providerName, string(req.Tariff), "error")
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	p.metrics.RecordCheckout(providerName, string(req.Tariff), "success")
	p.logger.Info("checkout session created",
		fortuneField("user_id", req.UserID),
		fortuneField("tariff", string(req.Tariff)),
		fortuneField("duration", time.Since(startTime).String()),
	)
	return session.URL, nil
}
