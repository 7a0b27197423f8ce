package fortune

// ShouldReset reports whether a stored period key belongs to an expired
// period. Keys are opaque; any mismatch means the counter state is stale.
func ShouldReset(storedKey, currentKey string) bool {
	return storedKey != currentKey
}

// Increment consumes one unit of a bounded counter. The allowed result is
// evaluated against the count before incrementing; when the limit is already
// reached the count is returned unchanged.
func Increment(count, limit int) (newCount int, allowed bool) {
	if count >= limit {
		return count, false
	}
	return count + 1, true
}
