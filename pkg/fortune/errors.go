package fortune

import "errors"

var (
	// ErrBusy is returned when a draw sequence for the user is already in flight
	ErrBusy = errors.New("draw already in flight")

	// ErrUnknownFeature is returned for an unrecognized feature kind
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrStoreUnavailable is returned when no store was provided
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNoCredits is returned when an oracle question is asked with an empty balance
	ErrNoCredits = errors.New("no oracle credits")
)
