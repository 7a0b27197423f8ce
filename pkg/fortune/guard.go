package fortune

import "sync"

// Guard prevents two simultaneous draw sequences for the same user. It marks
// users as in flight; it is not a lock over the store itself, so a second
// process bypassing it could still race the store. Single-process deployment
// is assumed.
//
// Release must be called exactly once per successful TryAcquire, on every
// exit path:
//
//	if !guard.TryAcquire(userID) {
//		// reply "please wait" and stop
//	}
//	defer guard.Release(userID)
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewGuard creates an empty concurrency guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// TryAcquire marks the user as in flight. It returns false if a sequence for
// the user is already running; the caller must then take no further action.
func (g *Guard) TryAcquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[userID]; busy {
		return false
	}
	g.inflight[userID] = struct{}{}
	return true
}

// Release clears the in-flight marker for the user.
func (g *Guard) Release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inflight, userID)
}
