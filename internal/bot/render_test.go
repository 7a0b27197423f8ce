package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/astrelia/tarotbot/pkg/fortune"
	"github.com/astrelia/tarotbot/storage/memory"
)

func newTestBot(t *testing.T) *Bot {
	t.Helper()
	engine, err := fortune.NewEngine(memory.New(), fortune.Config{})
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	deck := []fortune.Card{
		{Name: "The Fool", Text: "a leap into the unknown"},
		{Name: "The Tower", Text: "sudden change"},
	}
	return New(nil, engine, fortune.NewGuard(), nil, deck, Config{}, zerolog.Nop())
}

func TestRenderDailyCard(t *testing.T) {
	b := newTestBot(t)

	granted := b.renderDecision(fortune.FeatureDailyCard, fortune.Decision{
		Kind:      fortune.DecisionGranted,
		CardIndex: 1,
	})
	if !strings.Contains(granted, "The Tower") || !strings.Contains(granted, "sudden change") {
		t.Errorf("granted card render missing card content: %q", granted)
	}

	again := b.renderDecision(fortune.FeatureDailyCard, fortune.Decision{
		Kind:      fortune.DecisionAlreadyGranted,
		CardIndex: 0,
	})
	if !strings.Contains(again, "The Fool") || !strings.Contains(again, "already drawn") {
		t.Errorf("repeat render wrong: %q", again)
	}

	placeholder := b.renderDecision(fortune.FeatureDailyCard, fortune.Decision{
		Kind:      fortune.DecisionGranted,
		CardIndex: -1,
		Content:   fortune.PlaceholderText,
	})
	if placeholder != fortune.PlaceholderText {
		t.Errorf("placeholder render wrong: %q", placeholder)
	}
}

func TestRenderMiniSpread(t *testing.T) {
	b := newTestBot(t)

	intro := b.renderDecision(fortune.FeatureMiniSpread, fortune.Decision{Kind: fortune.DecisionShowIntro})
	if intro != textMiniIntro {
		t.Errorf("intro render wrong: %q", intro)
	}

	denied := b.renderDecision(fortune.FeatureMiniSpread, fortune.Decision{
		Kind:       fortune.DecisionDenied,
		Content:    "your old spread",
		RetryAfter: 4*time.Hour + 30*time.Minute,
	})
	if !strings.Contains(denied, "4h 30m") || !strings.Contains(denied, "your old spread") {
		t.Errorf("denied render wrong: %q", denied)
	}

	granted := b.renderDecision(fortune.FeatureMiniSpread, fortune.Decision{
		Kind:    fortune.DecisionGranted,
		Content: "three fresh cards",
	})
	if granted != "three fresh cards" {
		t.Errorf("granted render wrong: %q", granted)
	}
}

func TestRenderYesNo(t *testing.T) {
	b := newTestBot(t)

	intro := b.renderDecision(fortune.FeatureYesNo, fortune.Decision{
		Kind:      fortune.DecisionShowIntro,
		Remaining: 6,
	})
	if !strings.Contains(intro, "6") {
		t.Errorf("intro should show remaining count: %q", intro)
	}

	granted := b.renderDecision(fortune.FeatureYesNo, fortune.Decision{
		Kind:      fortune.DecisionGranted,
		Content:   "yes",
		Remaining: 2,
	})
	if !strings.Contains(granted, "yes") || !strings.Contains(granted, "2") {
		t.Errorf("granted render wrong: %q", granted)
	}

	last := b.renderDecision(fortune.FeatureYesNo, fortune.Decision{
		Kind:      fortune.DecisionGranted,
		Content:   "no",
		Remaining: 0,
	})
	if !strings.Contains(last, "last question") {
		t.Errorf("final draw render wrong: %q", last)
	}
}

func TestFormatWait(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5*time.Hour + 12*time.Minute, "5h 12m"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "1m"},
		{0, "1m"},
		{-time.Hour, "1m"},
	}
	for _, tt := range tests {
		if got := formatWait(tt.d); got != tt.want {
			t.Errorf("formatWait(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestMatchFeature(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{btnCard, true},
		{"Card of the Day", true},
		{"give me the DAILY CARD please", true},
		{"something else", false},
	}
	for _, tt := range tests {
		if got := matchFeature(tt.text, btnCard, "card of the day", "daily card"); got != tt.want {
			t.Errorf("matchFeature(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
