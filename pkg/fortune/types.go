package fortune

import (
	"time"
)

// Feature identifies one of the bot's draw features.
type Feature string

const (
	// FeatureDailyCard is the once-per-content-day card draw
	FeatureDailyCard Feature = "daily_card"
	// FeatureMiniSpread is the three-card spread with a rolling cooldown
	FeatureMiniSpread Feature = "mini_spread"
	// FeatureCompat is the once-per-content-day compatibility reading
	FeatureCompat Feature = "compatibility"
	// FeatureYesNo is the counted yes/no answer draw
	FeatureYesNo Feature = "yes_no"
)

// DecisionKind tags the outcome of an entitlement decision
type DecisionKind string

const (
	// DecisionShowIntro means the feature was primed; no quota was consumed
	DecisionShowIntro DecisionKind = "show_intro"
	// DecisionGranted means fresh content was selected and persisted
	DecisionGranted DecisionKind = "granted"
	// DecisionAlreadyGranted means the same-period content is returned verbatim
	DecisionAlreadyGranted DecisionKind = "already_granted"
	// DecisionDenied means quota or cooldown is exhausted
	DecisionDenied DecisionKind = "denied"
)

// Decision is the result of an entitlement check for a single user action.
// The transport layer renders it into user-facing text; the engine never
// formats messages itself.
type Decision struct {
	Kind DecisionKind

	// Content is the granted or cached content text. For the daily card it is
	// only set when the deck is empty and a placeholder had to be used.
	Content string

	// CardIndex is the index into the card deck (daily card only).
	// -1 when the deck was empty and Content carries a placeholder.
	CardIndex int

	// Remaining is the number of attempts left in the current period
	// (yes/no only).
	Remaining int

	// RetryAfter hints how long until the next grant becomes possible.
	// Zero when not applicable.
	RetryAfter time.Duration
}

// CardState records the card selected for the current content day.
type CardState struct {
	IssuedAt time.Time
	Index    int
}

// SpreadState records the last mini-spread grant; the rolling cooldown is
// measured from IssuedAt.
type SpreadState struct {
	IssuedAt time.Time
	Text     string
}

// CompatState tracks the two-stage compatibility flow for one content day.
type CompatState struct {
	Day    string
	Primed bool
	Text   string
}

// YesNoState tracks the daily yes/no counter.
type YesNoState struct {
	Day    string
	Primed bool
	Used   int
}

// UserRecord is the full per-user entitlement state. Sub-fields are created
// on first relevant interaction and lazily reset when their period key no
// longer matches the current one.
type UserRecord struct {
	DailyCard  *CardState
	MiniSpread *SpreadState

	// MiniSpreadIntroDay is the content day the mini-spread introduction was
	// last shown for; empty means never.
	MiniSpreadIntroDay string

	Compat *CompatState
	YesNo  *YesNoState

	// Birthday in DD.MM.YYYY form, as entered by the user; empty if unknown.
	Birthday string

	// OracleCredits is the paid question balance, topped up by the billing
	// webhook and consumed one per answered question.
	OracleCredits int

	// migrated is set by UnmarshalRecord when a legacy-shaped record was
	// converted, so the engine knows to rewrite it in canonical form.
	migrated bool
}

// Card is one entry of the card deck.
type Card struct {
	Name string
	Text string
}
