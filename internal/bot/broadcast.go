package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

const (
	broadcastHour      = 7
	broadcastMinute    = 30
	shareCadenceDays   = 16
	broadcastParallel  = 25
	broadcastAttempts  = 3
	broadcastRetryWait = 2 * time.Second
)

// Broadcaster wakes up every morning at 07:30 reference time and pushes the
// daily reminder, birthday wishes, and a share nudge every sixteenth day.
type Broadcaster struct {
	bot    *Bot
	clock  fortune.TimeSource
	epoch  time.Time
	sem    *semaphore.Weighted
	ticker func(time.Duration) <-chan time.Time
}

// NewBroadcaster wires a broadcaster to the bot. The clock is injectable so
// tests can steer the schedule.
func NewBroadcaster(bot *Bot, clock fortune.TimeSource) *Broadcaster {
	if clock == nil {
		clock = fortune.SystemClock{}
	}
	loc := fortune.ReferenceLocation()
	return &Broadcaster{
		bot:   bot,
		clock: clock,
		// Share-nudge cadence counts days from a fixed epoch so restarts
		// do not reshuffle the schedule.
		epoch:  time.Date(2024, time.January, 1, 0, 0, 0, 0, loc),
		sem:    semaphore.NewWeighted(broadcastParallel),
		ticker: func(d time.Duration) <-chan time.Time { return time.After(d) },
	}
}

// Run blocks until the context is cancelled, firing one morning round per day.
func (br *Broadcaster) Run(ctx context.Context) {
	for {
		wait := br.untilNextRound(br.clock.Now())
		br.bot.logger.Info().Dur("sleep", wait).Msg("broadcaster sleeping until next round")

		select {
		case <-ctx.Done():
			return
		case <-br.ticker(wait):
		}

		br.RunOnce(ctx)
	}
}

func (br *Broadcaster) untilNextRound(now time.Time) time.Duration {
	loc := fortune.ReferenceLocation()
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), broadcastHour, broadcastMinute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}

// RunOnce performs a single morning round against the current user registry.
func (br *Broadcaster) RunOnce(ctx context.Context) {
	users, err := br.bot.engine.Users(ctx)
	if err != nil {
		br.bot.logger.Error().Err(err).Msg("broadcast aborted, cannot list users")
		return
	}

	birthdays, err := br.bot.engine.Birthdays(ctx)
	if err != nil {
		br.bot.logger.Warn().Err(err).Msg("birthday list unavailable, skipping wishes")
		birthdays = nil
	}

	now := br.clock.Now().In(fortune.ReferenceLocation())
	today := now.Format("02.01")
	shareDay := br.isShareDay(now)

	br.bot.logger.Info().
		Int("users", len(users)).
		Bool("share_day", shareDay).
		Msg("morning broadcast round started")

	for _, userID := range users {
		if err := br.sem.Acquire(ctx, 1); err != nil {
			return
		}
		go func(userID string) {
			defer br.sem.Release(1)
			br.deliverRound(ctx, userID, isBirthday(birthdays[userID], today), shareDay)
		}(userID)
	}
}

// isBirthday compares a stored DD.MM.YYYY birthday against today's DD.MM.
func isBirthday(birthday, todayDayMonth string) bool {
	return birthday != "" && strings.HasPrefix(birthday, todayDayMonth+".")
}

func (br *Broadcaster) isShareDay(now time.Time) bool {
	days := int(now.Sub(br.epoch).Hours() / 24)
	return days > 0 && days%shareCadenceDays == 0
}

func (br *Broadcaster) deliverRound(ctx context.Context, userID string, birthday, shareDay bool) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return
	}

	br.deliver(ctx, userID, chatID, textMorningBroadcast)
	if birthday {
		br.deliver(ctx, userID, chatID, textBirthdayBroadcast)
	}
	if shareDay {
		br.deliver(ctx, userID, chatID, textShareBroadcast)
	}
}

// deliver retries transient failures and prunes users who blocked the bot.
func (br *Broadcaster) deliver(ctx context.Context, userID string, chatID int64, text string) {
	var lastErr error
	for attempt := 0; attempt < broadcastAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(broadcastRetryWait):
			}
		}

		_, lastErr = br.bot.api.Send(tgbotapi.NewMessage(chatID, text))
		if lastErr == nil {
			return
		}
		if isBlockedError(lastErr) {
			br.bot.logger.Info().Str("user_id", userID).Msg("user blocked the bot, removing")
			if err := br.bot.engine.RemoveUser(ctx, userID); err != nil {
				br.bot.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to remove blocked user")
			}
			return
		}
	}
	br.bot.logger.Warn().Err(lastErr).Str("user_id", userID).Msg("broadcast delivery failed")
}

func isBlockedError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") || strings.Contains(msg, "blocked")
}
