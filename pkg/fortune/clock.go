package fortune

import "time"

const (
	// cutoffHour is the local hour at which a new content day begins.
	cutoffHour = 6

	// referenceZone is the civil timezone the cutoff is evaluated in.
	referenceZone = "Europe/Moscow"

	dayKeyLayout = "2006-01-02"
)

// refLoc is the reference location for all day-boundary math. Moscow has had
// no DST since 2014, so a fixed UTC+3 zone is an exact fallback if the tzdata
// lookup fails.
var refLoc = loadReferenceLocation()

func loadReferenceLocation() *time.Location {
	loc, err := time.LoadLocation(referenceZone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// ContentDayKey returns the logical day identifier for entitlement purposes.
// A new day begins at the cutoff hour in the reference timezone, not at
// midnight: timestamps before the cutoff belong to the previous calendar
// date. The result is an opaque YYYY-MM-DD key, compared for equality only.
func ContentDayKey(now time.Time) string {
	n := now.In(refLoc)
	if n.Hour() < cutoffHour {
		n = n.AddDate(0, 0, -1)
	}
	return n.Format(dayKeyLayout)
}

// PeriodAnchor returns the most recent instant at which the cutoff hour
// occurred at or before now. A stored grant timestamp at or after the anchor
// belongs to the current content day.
func PeriodAnchor(now time.Time) time.Time {
	n := now.In(refLoc)
	anchor := time.Date(n.Year(), n.Month(), n.Day(), cutoffHour, 0, 0, 0, refLoc)
	if n.Before(anchor) {
		anchor = anchor.AddDate(0, 0, -1)
	}
	return anchor
}

// NextPeriodStart returns the instant the next content day begins.
func NextPeriodStart(now time.Time) time.Time {
	return PeriodAnchor(now).AddDate(0, 0, 1)
}

// ReferenceLocation returns the timezone all day-boundary math happens in.
// The broadcast scheduler uses it to fire at fixed local times.
func ReferenceLocation() *time.Location { return refLoc }

// TimeSource supplies the current time to the engine. Injecting it keeps
// every day-boundary decision testable with fixed timestamps.
type TimeSource interface {
	Now() time.Time
}

// SystemClock is the TimeSource backed by the wall clock.
type SystemClock struct{}

// Now implements TimeSource.
func (SystemClock) Now() time.Time { return time.Now() }
