package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ritualFrames = []string{
	"🕯 Lighting the candles...",
	"🕯 Shuffling the deck...",
	"🕯 The cards are choosing...",
	"🔮 Here is your answer.",
}

// performRitual plays a short edit-in-place animation before the answer.
// The message is deleted afterwards so only the answer remains in the chat.
// Any transport failure simply cuts the animation short.
func (b *Bot) performRitual(ctx context.Context, chatID int64) {
	b.send(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, ritualFrames[0]))
	if err != nil {
		b.logger.Warn().Err(err).Msg("ritual opening failed")
		return
	}

	for _, frame := range ritualFrames[1:] {
		select {
		case <-ctx.Done():
			return
		case <-time.After(b.cfg.RitualStepDelay):
		}
		edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, frame)
		if _, err := b.api.Send(edit); err != nil {
			break
		}
	}

	b.send(tgbotapi.NewDeleteMessage(chatID, sent.MessageID))
}
