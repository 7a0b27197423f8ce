package bot

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

var birthdayRe = regexp.MustCompile(`^\s*(\d{2})\.(\d{2})\.(\d{4})\s*$`)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	chatID := msg.Chat.ID
	userID := strconv.FormatInt(msg.From.ID, 10)
	text := strings.TrimSpace(msg.Text)

	b.engine.RegisterUser(ctx, userID)

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	st := b.state(chatID)

	// Conversation flows take priority over the button menu. Flags are read
	// and flipped under the state lock; sends happen after it is dropped.
	st.mu.Lock()
	switch {
	case st.awaitingUniverseConfirm:
		st.mu.Unlock()
		b.handleUniverseConfirm(ctx, chatID, st, text)
		return
	case st.writingToUniverse:
		st.universeDraft = text
		st.writingToUniverse = false
		st.awaitingUniverseConfirm = true
		st.mu.Unlock()
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(textUniverseConfirm, text))
		msg.ReplyMarkup = universeConfirmKeyboard()
		b.send(msg)
		return
	case st.awaitingOracleQuestion:
		st.awaitingOracleQuestion = false
		st.mu.Unlock()
		b.submitOracleQuestion(ctx, chatID, userID, text)
		return
	}
	st.mu.Unlock()

	if m := birthdayRe.FindStringSubmatch(text); m != nil {
		date := m[1] + "." + m[2] + "." + m[3]
		b.engine.SetBirthday(ctx, userID, date)
		b.reply(chatID, fmt.Sprintf(textBirthdaySaved, date))
		return
	}

	if b.cfg.ChannelUsername != "" && !b.isSubscribed(msg.From.ID) {
		b.reply(chatID, fmt.Sprintf(textNotSubscribed, b.cfg.ChannelUsername))
		return
	}

	switch {
	case matchFeature(text, btnCard, "card of the day", "daily card"):
		b.runFeature(ctx, chatID, userID, fortune.FeatureDailyCard)
	case matchFeature(text, btnMini, "mini spread"):
		b.runFeature(ctx, chatID, userID, fortune.FeatureMiniSpread)
	case matchFeature(text, btnCompat, "compatibility"):
		b.runFeature(ctx, chatID, userID, fortune.FeatureCompat)
	case matchFeature(text, btnYesNo, "ask a question", "yes or no"):
		b.runFeature(ctx, chatID, userID, fortune.FeatureYesNo)
	case matchFeature(text, btnUniverse, "write to the universe"):
		st.mu.Lock()
		st.writingToUniverse = true
		st.mu.Unlock()
		b.send(tgbotapi.NewMessage(chatID, textUniversePrompt))
	case matchFeature(text, btnOracle, "oracle"):
		b.startOracleFlow(ctx, chatID, userID)
	default:
		b.reply(chatID, textFallback)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.reply(chatID, textStart)
	case "resetday":
		if !b.isAdmin(msg.From.ID) {
			return
		}
		if err := b.engine.ResetAll(ctx); err != nil {
			b.logger.Error().Err(err).Msg("reset failed")
			return
		}
		b.reply(chatID, textResetDone)
	}
}

// matchFeature accepts the exact button label or any case-insensitive
// substring alias, so re-labelled keyboards from older sessions still route.
func matchFeature(text, label string, aliases ...string) bool {
	if text == label {
		return true
	}
	lower := strings.ToLower(text)
	for _, a := range aliases {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

// runFeature is the shared button handler: one ritual per user at a time,
// an animated pause, then the engine's decision rendered to chat.
func (b *Bot) runFeature(ctx context.Context, chatID int64, userID string, feature fortune.Feature) {
	if !b.guard.TryAcquire(userID) {
		b.reply(chatID, textBusy)
		return
	}
	defer b.guard.Release(userID)

	b.performRitual(ctx, chatID)

	dec, err := b.engine.Decide(ctx, userID, feature)
	if err != nil {
		b.logger.Error().Err(err).Str("feature", string(feature)).Msg("decision failed")
		b.reply(chatID, textSomethingWrong)
		return
	}

	b.reply(chatID, b.renderDecision(feature, dec))
}

func (b *Bot) isSubscribed(userID int64) bool {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: b.cfg.ChannelUsername,
			UserID:             userID,
		},
	})
	if err != nil {
		// Fail open: a misconfigured gate must not lock everyone out.
		b.logger.Warn().Err(err).Msg("subscription check failed")
		return true
	}
	switch member.Status {
	case "creator", "administrator", "member":
		return true
	}
	return false
}
