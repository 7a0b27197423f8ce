package bot

import (
	"context"
	"fmt"
	"math/rand"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var universeSentTexts = []string{
	"✨ Sent. The Universe has a long memory and a kind one.",
	"✨ Sent. Somewhere, something just shifted in your favor.",
	"✨ Your words are on their way. Watch for small signs this week.",
}

// handleUniverseConfirm finishes the letter flow: on confirmation the draft
// is forwarded to every admin, otherwise the user returns to writing.
func (b *Bot) handleUniverseConfirm(ctx context.Context, chatID int64, st *chatState, text string) {
	switch text {
	case btnUniverseSend:
		st.mu.Lock()
		st.awaitingUniverseConfirm = false
		draft := st.universeDraft
		st.universeDraft = ""
		st.mu.Unlock()
		for id := range b.admins {
			b.send(tgbotapi.NewMessage(id, "🌙 Letter to the Universe:\n\n"+draft))
		}
		b.reply(chatID, universeSentTexts[rand.Intn(len(universeSentTexts))])
	case btnUniverseLater:
		st.mu.Lock()
		st.awaitingUniverseConfirm = false
		st.writingToUniverse = true
		st.mu.Unlock()
		b.reply(chatID, textUniverseLater)
	default:
		// Any other text replaces the draft and asks again.
		st.mu.Lock()
		st.universeDraft = text
		st.mu.Unlock()
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(textUniverseConfirm, text))
		msg.ReplyMarkup = universeConfirmKeyboard()
		b.send(msg)
	}
}
