// Package bot is the Telegram transport: it routes button presses to the
// entitlement engine, renders decisions into chat messages, and runs the
// payment and broadcast flows. No entitlement logic lives here.
package bot

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/astrelia/tarotbot/pkg/billing"
	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Config holds transport-level settings.
type Config struct {
	// ChannelUsername gates the bot behind a channel subscription when set
	// (e.g. "@astralchannel"). Empty disables the gate.
	ChannelUsername string

	// AdminIDs may run administrative commands such as /resetday.
	AdminIDs []int64

	// RitualStepDelay is the pause between ritual animation frames.
	// Default: 1300ms, three frames.
	RitualStepDelay time.Duration

	// OracleSubmitURL receives paid questions as JSON POSTs for downstream
	// answer generation. Empty disables submission (credits still accrue).
	OracleSubmitURL string
}

// telegramClient is the slice of the Telegram API the bot uses. Satisfied by
// *tgbotapi.BotAPI; tests substitute a recording fake.
type telegramClient interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// chatState is the per-chat conversation state outside the entitlement
// engine: the universe-letter flow and the oracle question flow. Updates are
// handled concurrently and the payment webhook touches the same state, so
// every field access goes through mu.
type chatState struct {
	mu sync.Mutex

	writingToUniverse       bool
	awaitingUniverseConfirm bool
	universeDraft           string

	awaitingOracleQuestion bool
}

// Bot wraps the Telegram API client and all handlers.
type Bot struct {
	api      telegramClient
	engine   *fortune.Engine
	guard    *fortune.Guard
	payments billing.Provider
	deck     []fortune.Card
	cfg      Config
	logger   zerolog.Logger
	http     *http.Client

	mu     sync.Mutex
	chats  map[int64]*chatState
	admins map[int64]struct{}
}

// New creates and configures a Bot.
func New(api telegramClient, engine *fortune.Engine, guard *fortune.Guard,
	payments billing.Provider, deck []fortune.Card, cfg Config, logger zerolog.Logger) *Bot {

	if cfg.RitualStepDelay <= 0 {
		cfg.RitualStepDelay = 1300 * time.Millisecond
	}
	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}

	return &Bot{
		api:      api,
		engine:   engine,
		guard:    guard,
		payments: payments,
		deck:     deck,
		cfg:      cfg,
		logger:   logger,
		http:     &http.Client{Timeout: 30 * time.Second},
		chats:    make(map[int64]*chatState),
		admins:   admins,
	}
}

// Run consumes updates until the context is cancelled. Each update is
// handled in its own goroutine: a slow ritual for one user must not stall
// anyone else, and a second press from the same user has to reach the guard
// while the first is still in flight so it gets rejected instead of queued.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Msg("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// SetPayments attaches a billing provider after construction. The provider
// itself wants the bot as its payment notifier, so the two are wired in two
// steps at startup.
func (b *Bot) SetPayments(p billing.Provider) {
	b.payments = p
}

// state returns the conversation state for a chat, creating it on demand.
func (b *Bot) state(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, ok := b.chats[chatID]
	if !ok {
		st = &chatState{}
		b.chats[chatID] = st
	}
	return st
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

// send delivers a message, logging and swallowing transport errors: a failed
// send must never break a handler mid-flow.
func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn().Err(err).Msg("failed to send message")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainKeyboard()
	b.send(msg)
}
