package fortune

import "context"

// Store defines the interface for per-user state persistence. Records are
// sharded by user id; backends that keep everything in one document must
// still present this per-user contract and serialize access internally.
//
// Read faults (missing data, unreadable content, schema mismatch) must
// degrade to "no state" rather than fail: no prior state always means
// "eligible for a new grant", which is the safe direction.
type Store interface {
	// Get retrieves the record for a user. Returns (nil, nil) when the user
	// has no state.
	Get(ctx context.Context, userID string) (*UserRecord, error)

	// Put stores the record for a user, overwriting any previous state.
	Put(ctx context.Context, userID string, rec *UserRecord) error

	// Delete removes a user entirely (used when a chat becomes unreachable).
	Delete(ctx context.Context, userID string) error

	// All returns every known user record, keyed by user id. Used by the
	// broadcast scheduler to enumerate users.
	All(ctx context.Context) (map[string]*UserRecord, error)

	// Reset clears the entire store (administrative reset-all).
	Reset(ctx context.Context) error
}
