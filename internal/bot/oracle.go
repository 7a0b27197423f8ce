package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/astrelia/tarotbot/pkg/billing"
	"github.com/astrelia/tarotbot/pkg/fortune"
)

// startOracleFlow either opens the question prompt (user has paid credits)
// or offers checkout links for both tariffs.
func (b *Bot) startOracleFlow(ctx context.Context, chatID int64, userID string) {
	if credits := b.engine.OracleCredits(ctx, userID); credits > 0 {
		st := b.state(chatID)
		st.mu.Lock()
		st.awaitingOracleQuestion = true
		st.mu.Unlock()
		b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf(textOracleHasCredits, credits)))
		return
	}

	if b.payments == nil {
		b.reply(chatID, textCheckoutFailed)
		return
	}

	singleURL, err := b.payments.CheckoutURL(ctx, billing.CheckoutRequest{
		UserID: userID,
		Tariff: billing.TariffSingle,
	})
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("single checkout failed")
		b.reply(chatID, textCheckoutFailed)
		return
	}
	packageURL, err := b.payments.CheckoutURL(ctx, billing.CheckoutRequest{
		UserID: userID,
		Tariff: billing.TariffPackage,
	})
	if err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("package checkout failed")
		b.reply(chatID, textCheckoutFailed)
		return
	}

	msg := tgbotapi.NewMessage(chatID, textOracleNoCredits)
	msg.ReplyMarkup = paymentKeyboard(singleURL, packageURL)
	b.send(msg)
}

// submitOracleQuestion spends one credit and forwards the question
// downstream. The credit is refunded when the forward fails.
func (b *Bot) submitOracleQuestion(ctx context.Context, chatID int64, userID, question string) {
	_, err := b.engine.ConsumeOracleCredit(ctx, userID)
	if err != nil {
		if errors.Is(err, fortune.ErrNoCredits) {
			b.startOracleFlow(ctx, chatID, userID)
			return
		}
		b.logger.Error().Err(err).Str("user_id", userID).Msg("credit consume failed")
		b.reply(chatID, textOracleSubmitFailed)
		return
	}

	if err := b.forwardOracleQuestion(ctx, userID, question); err != nil {
		b.logger.Error().Err(err).Str("user_id", userID).Msg("oracle submit failed")
		b.engine.AddOracleCredits(ctx, userID, 1)
		b.reply(chatID, textOracleSubmitFailed)
		return
	}

	b.reply(chatID, textOracleSubmitted)
}

func (b *Bot) forwardOracleQuestion(ctx context.Context, userID, question string) error {
	if b.cfg.OracleSubmitURL == "" {
		// No downstream configured: deliver to admins directly.
		for id := range b.admins {
			b.send(tgbotapi.NewMessage(id, "🪄 Oracle question from "+userID+":\n\n"+question))
		}
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"user_id":  userID,
		"question": question,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.OracleSubmitURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("oracle endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// NotifyPaymentSucceeded implements billing.Notifier: the webhook handler
// calls it after crediting the user so the chat learns about the purchase.
func (b *Bot) NotifyPaymentSucceeded(ctx context.Context, userID, question string, credits int) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("user id %q is not a chat id: %w", userID, err)
	}

	balance := b.engine.OracleCredits(ctx, userID)
	b.reply(chatID, fmt.Sprintf(textPaymentThanks, balance))

	// A question captured at checkout time goes straight to the Oracle.
	if question != "" {
		st := b.state(chatID)
		st.mu.Lock()
		st.awaitingOracleQuestion = false
		st.mu.Unlock()
		b.submitOracleQuestion(ctx, chatID, userID, question)
	}
	return nil
}
