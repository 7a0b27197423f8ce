package fortune

import "math/rand"

// PlaceholderText is returned when a content library is empty. An empty
// library degrades to this fixed response instead of failing the draw.
const PlaceholderText = "The cards are silent right now. Come back a little later."

// Library is an ordered sequence of content strings a policy draws from.
// Each policy receives its own library at construction time.
type Library []string

// Pick selects one entry uniformly at random. The second return value is
// false when the library is empty.
func (l Library) Pick(r *rand.Rand) (string, bool) {
	if len(l) == 0 {
		return "", false
	}
	return l[r.Intn(len(l))], true
}
