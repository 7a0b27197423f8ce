package fortune

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

const (
	// DefaultYesNoLimit is the number of yes/no draws allowed per content day.
	DefaultYesNoLimit = 6

	// DefaultMiniSpreadCooldown is the rolling window between mini-spread grants.
	DefaultMiniSpreadCooldown = 6 * time.Hour
)

// Config holds the engine's content libraries and tunables. Each policy
// receives its library explicitly; there is no name-based lookup.
type Config struct {
	// Deck is the daily-card library.
	Deck []Card

	// Spreads is the mini-spread library.
	Spreads Library

	// CompatReadings is the compatibility reading library.
	CompatReadings Library

	// YesNoAnswers is the yes/no answer library.
	YesNoAnswers Library

	// YesNoLimit is the per-content-day yes/no draw limit (default: 6).
	YesNoLimit int

	// MiniSpreadCooldown is the rolling window between mini-spread grants
	// (default: 6 hours).
	MiniSpreadCooldown time.Duration

	// Clock supplies the current time (default: SystemClock).
	Clock TimeSource

	// NewRand builds the per-decision random source for the yes/no draw,
	// seeded from the user id and timestamp. This decorrelates answers
	// across users; it is a cosmetic measure, not a fairness or security
	// guarantee. Default: math/rand over the seed.
	NewRand func(seed int64) *rand.Rand

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking decisions (default: NoopMetrics).
	Metrics Metrics
}

// Engine is the per-user entitlement state machine. Every decision loads the
// user's state, applies one feature policy, and persists the mutation. A
// single mutex serializes the read-then-write sequence so interleaved
// decisions cannot lose updates even across different users.
type Engine struct {
	store   Store
	cfg     Config
	clock   TimeSource
	logger  Logger
	metrics Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an entitlement engine over the given store.
func NewEngine(store Store, cfg Config) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreUnavailable
	}
	if cfg.YesNoLimit <= 0 {
		cfg.YesNoLimit = DefaultYesNoLimit
	}
	if cfg.MiniSpreadCooldown <= 0 {
		cfg.MiniSpreadCooldown = DefaultMiniSpreadCooldown
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func(seed int64) *rand.Rand {
			return rand.New(rand.NewSource(seed))
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = &NoopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &NoopMetrics{}
	}

	return &Engine{
		store:   store,
		cfg:     cfg,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Decide runs one feature policy for the user at the current time and
// returns the resulting decision. State mutations are persisted before
// returning. The only error condition is an unknown feature kind; storage
// faults degrade to "no prior state" and are logged, never surfaced.
func (e *Engine) Decide(ctx context.Context, userID string, feature Feature) (Decision, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	now := e.clock.Now()

	var d Decision
	switch feature {
	case FeatureDailyCard:
		d = e.decideDailyCard(ctx, userID, now)
	case FeatureMiniSpread:
		d = e.decideMiniSpread(ctx, userID, now)
	case FeatureCompat:
		d = e.decideCompat(ctx, userID, now)
	case FeatureYesNo:
		d = e.decideYesNo(ctx, userID, now)
	default:
		return Decision{}, ErrUnknownFeature
	}

	e.metrics.RecordDecision(feature, d.Kind)
	e.metrics.RecordDecisionDuration(feature, time.Since(start))
	e.logger.Debug("entitlement decision",
		Field{"user_id", userID},
		Field{"feature", feature},
		Field{"decision", d.Kind},
	)
	return d, nil
}

// decideDailyCard grants one card per content day. There is no priming
// stage: a same-period repeat returns the stored index, a new period rolls a
// fresh card.
func (e *Engine) decideDailyCard(ctx context.Context, userID string, now time.Time) Decision {
	rec := e.get(ctx, userID)
	anchor := PeriodAnchor(now)

	if st := rec.DailyCard; st != nil && !st.IssuedAt.Before(anchor) {
		d := Decision{Kind: DecisionAlreadyGranted, CardIndex: st.Index}
		if st.Index < 0 || st.Index >= len(e.cfg.Deck) {
			d.CardIndex = -1
			d.Content = PlaceholderText
		}
		if rec.migrated {
			// Rewrite the legacy shape canonically even though the decision
			// itself changes no state.
			e.put(ctx, userID, rec)
		}
		return d
	}

	idx := -1
	content := ""
	if len(e.cfg.Deck) > 0 {
		idx = e.rng.Intn(len(e.cfg.Deck))
	} else {
		content = PlaceholderText
		e.logger.Warn("card deck is empty, using placeholder", Field{"user_id", userID})
	}

	rec.DailyCard = &CardState{IssuedAt: now, Index: idx}
	e.put(ctx, userID, rec)
	return Decision{Kind: DecisionGranted, CardIndex: idx, Content: content}
}

// decideMiniSpread shows an introduction once per content day, then enforces
// a rolling cooldown measured from the last grant's timestamp. The intro
// does not touch the cooldown timer.
func (e *Engine) decideMiniSpread(ctx context.Context, userID string, now time.Time) Decision {
	rec := e.get(ctx, userID)
	day := ContentDayKey(now)

	if rec.MiniSpreadIntroDay != day {
		rec.MiniSpreadIntroDay = day
		e.put(ctx, userID, rec)
		return Decision{Kind: DecisionShowIntro}
	}

	if st := rec.MiniSpread; st != nil {
		elapsed := now.Sub(st.IssuedAt)
		if elapsed >= 0 && elapsed < e.cfg.MiniSpreadCooldown {
			return Decision{
				Kind:       DecisionDenied,
				Content:    st.Text,
				RetryAfter: e.cfg.MiniSpreadCooldown - elapsed,
			}
		}
	}

	text, ok := e.cfg.Spreads.Pick(e.rng)
	if !ok {
		text = PlaceholderText
		e.logger.Warn("spread library is empty, using placeholder", Field{"user_id", userID})
	}

	rec.MiniSpread = &SpreadState{IssuedAt: now, Text: text}
	e.put(ctx, userID, rec)
	return Decision{Kind: DecisionGranted, Content: text}
}

// decideCompat runs the two-stage compatibility flow: first tap of a content
// day primes and shows the introduction, the second grants and stores the
// reading, later taps return it verbatim.
func (e *Engine) decideCompat(ctx context.Context, userID string, now time.Time) Decision {
	rec := e.get(ctx, userID)
	day := ContentDayKey(now)
	st := rec.Compat

	if st != nil && st.Day == day && st.Text != "" {
		return Decision{Kind: DecisionAlreadyGranted, Content: st.Text}
	}

	if st == nil || st.Day != day || !st.Primed {
		rec.Compat = &CompatState{Day: day, Primed: true}
		e.put(ctx, userID, rec)
		return Decision{Kind: DecisionShowIntro}
	}

	text, ok := e.cfg.CompatReadings.Pick(e.rng)
	if !ok {
		text = PlaceholderText
		e.logger.Warn("compatibility library is empty, using placeholder", Field{"user_id", userID})
	}

	rec.Compat = &CompatState{Day: day, Primed: true, Text: text}
	e.put(ctx, userID, rec)
	return Decision{Kind: DecisionGranted, Content: text}
}

// decideYesNo primes once per content day, then allows up to the configured
// limit of counted draws; the counter resets lazily on the first access of a
// new content day.
func (e *Engine) decideYesNo(ctx context.Context, userID string, now time.Time) Decision {
	rec := e.get(ctx, userID)
	day := ContentDayKey(now)
	limit := e.cfg.YesNoLimit

	st := rec.YesNo
	if st == nil || ShouldReset(st.Day, day) {
		st = &YesNoState{Day: day}
		rec.YesNo = st
		e.put(ctx, userID, rec)
	}

	if !st.Primed {
		st.Primed = true
		e.put(ctx, userID, rec)
		return Decision{Kind: DecisionShowIntro, Remaining: limit - st.Used}
	}

	newCount, allowed := Increment(st.Used, limit)
	if !allowed {
		return Decision{
			Kind:       DecisionDenied,
			Remaining:  0,
			RetryAfter: NextPeriodStart(now).Sub(now),
		}
	}

	r := e.cfg.NewRand(yesNoSeed(userID, now))
	text, ok := e.cfg.YesNoAnswers.Pick(r)
	if !ok {
		text = PlaceholderText
		e.logger.Warn("yes/no library is empty, using placeholder", Field{"user_id", userID})
	}

	st.Used = newCount
	e.put(ctx, userID, rec)
	return Decision{Kind: DecisionGranted, Content: text, Remaining: limit - newCount}
}

// yesNoSeed mixes the user id and current timestamp into a per-call seed.
func yesNoSeed(userID string, now time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte(now.Format(time.RFC3339)))
	return int64(h.Sum64())
}

// ResetAll clears every user's state. Administrative operation backing the
// /resetday command.
func (e *Engine) ResetAll(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Reset(ctx)
}

// RegisterUser makes a user known to the store so broadcasts can reach them.
// Existing state is left untouched.
func (e *Engine) RegisterUser(ctx context.Context, userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if rec, err := e.store.Get(ctx, userID); err == nil && rec != nil {
		return
	}
	e.put(ctx, userID, &UserRecord{})
}

// RemoveUser forgets a user entirely (their chat became unreachable).
func (e *Engine) RemoveUser(ctx context.Context, userID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Delete(ctx, userID)
}

// Users returns the ids of every known user.
func (e *Engine) Users(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	return ids, nil
}

// Birthdays returns the stored birthday (DD.MM.YYYY) per user id, omitting
// users without one.
func (e *Engine) Birthdays(ctx context.Context) (map[string]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	all, err := e.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for id, rec := range all {
		if rec != nil && rec.Birthday != "" {
			out[id] = rec.Birthday
		}
	}
	return out, nil
}

// SetBirthday stores the user's birthday in DD.MM.YYYY form.
func (e *Engine) SetBirthday(ctx context.Context, userID, birthday string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.get(ctx, userID)
	rec.Birthday = birthday
	e.put(ctx, userID, rec)
}

// AddOracleCredits tops up the user's paid question balance and returns the
// new balance. Called by the billing webhook after a successful payment.
func (e *Engine) AddOracleCredits(ctx context.Context, userID string, credits int) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.get(ctx, userID)
	rec.OracleCredits += credits
	e.put(ctx, userID, rec)
	return rec.OracleCredits
}

// ConsumeOracleCredit spends one paid question credit. Returns the remaining
// balance, or ErrNoCredits when the balance is empty.
func (e *Engine) ConsumeOracleCredit(ctx context.Context, userID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec := e.get(ctx, userID)
	if rec.OracleCredits <= 0 {
		return 0, ErrNoCredits
	}
	rec.OracleCredits--
	e.put(ctx, userID, rec)
	return rec.OracleCredits, nil
}

// YesNoLimit reports the configured per-content-day yes/no draw limit.
func (e *Engine) YesNoLimit() int { return e.cfg.YesNoLimit }

// OracleCredits returns the user's current paid question balance.
func (e *Engine) OracleCredits(ctx context.Context, userID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.get(ctx, userID).OracleCredits
}

// get loads the user's record, degrading any read fault to empty state.
func (e *Engine) get(ctx context.Context, userID string) *UserRecord {
	start := time.Now()
	rec, err := e.store.Get(ctx, userID)
	e.metrics.RecordStorageOperation("get", time.Since(start), err)
	if err != nil {
		e.logger.Warn("user state unreadable, treating as empty",
			Field{"user_id", userID}, Field{"error", err.Error()})
		return &UserRecord{}
	}
	if rec == nil {
		return &UserRecord{}
	}
	return rec
}

// put persists the user's record. A failed save is logged and otherwise
// swallowed: the decision already made stands, and the worst outcome of a
// lost save is an extra grant later.
func (e *Engine) put(ctx context.Context, userID string, rec *UserRecord) {
	rec.migrated = false
	start := time.Now()
	err := e.store.Put(ctx, userID, rec)
	e.metrics.RecordStorageOperation("put", time.Since(start), err)
	if err != nil {
		e.logger.Error("failed to persist user state",
			Field{"user_id", userID}, Field{"error", err.Error()})
	}
}
