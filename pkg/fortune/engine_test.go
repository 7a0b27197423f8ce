package fortune_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrelia/tarotbot/pkg/fortune"
	"github.com/astrelia/tarotbot/storage/memory"
)

// fakeClock is a settable time source for steering the content-day cutoff.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func msk(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, fortune.ReferenceLocation())
}

func newTestEngine(t *testing.T, clock fortune.TimeSource) *fortune.Engine {
	t.Helper()
	engine, err := fortune.NewEngine(memory.New(), fortune.Config{
		Deck: []fortune.Card{
			{Name: "The Fool", Text: "a leap"},
			{Name: "The Magician", Text: "a will"},
			{Name: "The Moon", Text: "a dream"},
		},
		Spreads:        fortune.Library{"spread one", "spread two"},
		CompatReadings: fortune.Library{"reading one", "reading two"},
		YesNoAnswers:   fortune.Library{"yes", "no", "ask again"},
		Clock:          clock,
	})
	require.NoError(t, err)
	return engine
}

func TestNewEngineRequiresStore(t *testing.T) {
	_, err := fortune.NewEngine(nil, fortune.Config{})
	assert.ErrorIs(t, err, fortune.ErrStoreUnavailable)
}

func TestDecideUnknownFeature(t *testing.T) {
	engine := newTestEngine(t, &fakeClock{now: msk(2024, 3, 15, 12, 0)})
	_, err := engine.Decide(context.Background(), "u1", fortune.Feature("tea_leaves"))
	assert.ErrorIs(t, err, fortune.ErrUnknownFeature)
}

func TestDailyCardOncePerContentDay(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	first, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, first.Kind)
	require.GreaterOrEqual(t, first.CardIndex, 0)

	// Same content day: the same card comes back, no redraw.
	clock.Advance(5 * time.Hour)
	second, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionAlreadyGranted, second.Kind)
	assert.Equal(t, first.CardIndex, second.CardIndex)

	// Crossing midnight does not reset; crossing the morning cutoff does.
	clock.now = msk(2024, 3, 16, 1, 0)
	night, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionAlreadyGranted, night.Kind)

	clock.now = msk(2024, 3, 16, 6, 0)
	fresh, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, fresh.Kind)
}

func TestDailyCardEmptyDeck(t *testing.T) {
	engine, err := fortune.NewEngine(memory.New(), fortune.Config{
		Clock: &fakeClock{now: msk(2024, 3, 15, 12, 0)},
	})
	require.NoError(t, err)

	dec, err := engine.Decide(context.Background(), "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, dec.Kind)
	assert.Equal(t, -1, dec.CardIndex)
	assert.Equal(t, fortune.PlaceholderText, dec.Content)
}

func TestMiniSpreadIntroThenCooldown(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	intro, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, intro.Kind)

	grant, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, grant.Kind)
	assert.NotEmpty(t, grant.Content)

	// Inside the cooldown: denied, cached text, honest retry hint.
	clock.Advance(2 * time.Hour)
	denied, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionDenied, denied.Kind)
	assert.Equal(t, grant.Content, denied.Content)
	assert.Equal(t, 4*time.Hour, denied.RetryAfter)

	// Past the cooldown: a fresh grant, no second intro the same day.
	clock.Advance(4 * time.Hour)
	again, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, again.Kind)
}

func TestMiniSpreadIntroOncePerDay(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	grant, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, grant.Kind)

	// Next content day: the intro shows again before anything else, and it
	// does not consume the cooldown.
	clock.now = msk(2024, 3, 16, 7, 0)
	intro, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, intro.Kind)

	next, err := engine.Decide(ctx, "u1", fortune.FeatureMiniSpread)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, next.Kind)
}

func TestCompatTwoStageFlow(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	intro, err := engine.Decide(ctx, "u1", fortune.FeatureCompat)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, intro.Kind)

	grant, err := engine.Decide(ctx, "u1", fortune.FeatureCompat)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, grant.Kind)
	assert.NotEmpty(t, grant.Content)

	// Rest of the day returns the stored reading verbatim.
	clock.Advance(3 * time.Hour)
	cached, err := engine.Decide(ctx, "u1", fortune.FeatureCompat)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionAlreadyGranted, cached.Kind)
	assert.Equal(t, grant.Content, cached.Content)

	// The new content day starts the flow over.
	clock.now = msk(2024, 3, 16, 6, 30)
	fresh, err := engine.Decide(ctx, "u1", fortune.FeatureCompat)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, fresh.Kind)
}

func TestYesNoCounterAndReset(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	intro, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, intro.Kind)
	assert.Equal(t, fortune.DefaultYesNoLimit, intro.Remaining)

	for i := 0; i < fortune.DefaultYesNoLimit; i++ {
		clock.Advance(time.Minute)
		dec, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
		require.NoError(t, err)
		assert.Equal(t, fortune.DecisionGranted, dec.Kind, "draw %d", i+1)
		assert.Equal(t, fortune.DefaultYesNoLimit-i-1, dec.Remaining, "draw %d", i+1)
		assert.NotEmpty(t, dec.Content)
	}

	clock.Advance(time.Minute)
	denied, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionDenied, denied.Kind)
	assert.Equal(t, 0, denied.Remaining)
	assert.Equal(t, msk(2024, 3, 16, 6, 0).Sub(clock.Now()), denied.RetryAfter)

	// The counter resets lazily on the next content day, intro included.
	clock.now = msk(2024, 3, 16, 8, 0)
	freshIntro, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionShowIntro, freshIntro.Kind)
	assert.Equal(t, fortune.DefaultYesNoLimit, freshIntro.Remaining)
}

func TestYesNoCustomLimit(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine, err := fortune.NewEngine(memory.New(), fortune.Config{
		YesNoAnswers: fortune.Library{"yes"},
		YesNoLimit:   2,
		Clock:        clock,
	})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = engine.Decide(ctx, "u1", fortune.FeatureYesNo) // intro
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		dec, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
		require.NoError(t, err)
		assert.Equal(t, fortune.DecisionGranted, dec.Kind)
	}
	dec, err := engine.Decide(ctx, "u1", fortune.FeatureYesNo)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionDenied, dec.Kind)
}

func TestUsersAreIndependent(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	first, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, first.Kind)

	other, err := engine.Decide(ctx, "u2", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, other.Kind)
}

func TestResetAll(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	_, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	require.NoError(t, engine.ResetAll(ctx))

	dec, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, dec.Kind)
}

func TestOracleCredits(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	assert.Equal(t, 0, engine.OracleCredits(ctx, "u1"))
	_, err := engine.ConsumeOracleCredit(ctx, "u1")
	assert.ErrorIs(t, err, fortune.ErrNoCredits)

	assert.Equal(t, 6, engine.AddOracleCredits(ctx, "u1", 6))

	left, err := engine.ConsumeOracleCredit(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, left)
	assert.Equal(t, 5, engine.OracleCredits(ctx, "u1"))
}

func TestRegistryAndBirthdays(t *testing.T) {
	clock := &fakeClock{now: msk(2024, 3, 15, 12, 0)}
	engine := newTestEngine(t, clock)
	ctx := context.Background()

	engine.RegisterUser(ctx, "u1")
	engine.RegisterUser(ctx, "u2")
	engine.SetBirthday(ctx, "u2", "15.03.1990")

	users, err := engine.Users(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, users)

	birthdays, err := engine.Birthdays(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u2": "15.03.1990"}, birthdays)

	require.NoError(t, engine.RemoveUser(ctx, "u1"))
	users, err = engine.Users(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2"}, users)
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context, userID string) (*fortune.UserRecord, error) {
	return nil, fortune.ErrStoreUnavailable
}
func (failingStore) Put(ctx context.Context, userID string, rec *fortune.UserRecord) error {
	return fortune.ErrStoreUnavailable
}
func (failingStore) Delete(ctx context.Context, userID string) error {
	return fortune.ErrStoreUnavailable
}
func (failingStore) All(ctx context.Context) (map[string]*fortune.UserRecord, error) {
	return nil, fortune.ErrStoreUnavailable
}
func (failingStore) Reset(ctx context.Context) error { return fortune.ErrStoreUnavailable }

func TestDecideFailsOpenOnStorageFaults(t *testing.T) {
	engine, err := fortune.NewEngine(failingStore{}, fortune.Config{
		Deck:  []fortune.Card{{Name: "The Star", Text: "hope"}},
		Clock: &fakeClock{now: msk(2024, 3, 15, 12, 0)},
	})
	require.NoError(t, err)

	// Reads and writes both fail; the user still gets a card.
	dec, err := engine.Decide(context.Background(), "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionGranted, dec.Kind)
}

func TestDailyCardLegacyRecordHonoredAndRewritten(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	// A record in the pre-migration shape, granted earlier today.
	rec, err := fortune.UnmarshalRecord([]byte(`{"date": "2024-03-15", "idx": 2}`))
	require.NoError(t, err)
	require.True(t, rec.Migrated())
	require.NoError(t, store.Put(ctx, "u1", rec))

	engine, err := fortune.NewEngine(store, fortune.Config{
		Deck: []fortune.Card{
			{Name: "The Fool", Text: "a leap"},
			{Name: "The Magician", Text: "a will"},
			{Name: "The Moon", Text: "a dream"},
		},
		Clock: &fakeClock{now: msk(2024, 3, 15, 12, 0)},
	})
	require.NoError(t, err)

	// The legacy grant counts for the current content day: same card back,
	// no redraw.
	dec, err := engine.Decide(ctx, "u1", fortune.FeatureDailyCard)
	require.NoError(t, err)
	assert.Equal(t, fortune.DecisionAlreadyGranted, dec.Kind)
	assert.Equal(t, 2, dec.CardIndex)

	// The decision changed no entitlement state, but the record was written
	// back in the canonical shape.
	stored, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Migrated())

	data, err := fortune.MarshalRecord(stored)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"card_day"`)
	assert.NotContains(t, string(data), `"date":"2024-03-15"`)
}
