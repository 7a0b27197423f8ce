package bot

import (
	"fmt"
	"time"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// renderDecision turns an engine decision into the chat message for it.
func (b *Bot) renderDecision(feature fortune.Feature, dec fortune.Decision) string {
	switch feature {
	case fortune.FeatureDailyCard:
		return b.renderDailyCard(dec)
	case fortune.FeatureMiniSpread:
		return b.renderMiniSpread(dec)
	case fortune.FeatureCompat:
		return b.renderCompat(dec)
	case fortune.FeatureYesNo:
		return b.renderYesNo(dec)
	}
	return dec.Content
}

func (b *Bot) cardText(dec fortune.Decision) string {
	if dec.CardIndex >= 0 && dec.CardIndex < len(b.deck) {
		card := b.deck[dec.CardIndex]
		return fmt.Sprintf("🔮 %s\n\n%s", card.Name, card.Text)
	}
	return dec.Content
}

func (b *Bot) renderDailyCard(dec fortune.Decision) string {
	switch dec.Kind {
	case fortune.DecisionGranted:
		return b.cardText(dec)
	case fortune.DecisionAlreadyGranted:
		return fmt.Sprintf(textCardAgain, b.cardText(dec))
	}
	return dec.Content
}

func (b *Bot) renderMiniSpread(dec fortune.Decision) string {
	switch dec.Kind {
	case fortune.DecisionShowIntro:
		return textMiniIntro
	case fortune.DecisionDenied:
		return fmt.Sprintf(textMiniDenied, formatWait(dec.RetryAfter), dec.Content)
	}
	return dec.Content
}

func (b *Bot) renderCompat(dec fortune.Decision) string {
	if dec.Kind == fortune.DecisionShowIntro {
		return textCompatIntro
	}
	return dec.Content
}

func (b *Bot) renderYesNo(dec fortune.Decision) string {
	switch dec.Kind {
	case fortune.DecisionShowIntro:
		return fmt.Sprintf(textYesNoIntro, dec.Remaining)
	case fortune.DecisionDenied:
		return fmt.Sprintf(textYesNoDenied, b.engine.YesNoLimit(), formatWait(dec.RetryAfter))
	}
	if dec.Remaining > 0 {
		return fmt.Sprintf("%s\n\nQuestions left today: %d", dec.Content, dec.Remaining)
	}
	return fmt.Sprintf("%s\n\nThat was your last question for today.", dec.Content)
}

// formatWait renders a duration as "5h 12m", rounding up so the user never
// arrives early to a still-closed door.
func formatWait(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	if m == 0 {
		m = 1
	}
	return fmt.Sprintf("%dm", m)
}
