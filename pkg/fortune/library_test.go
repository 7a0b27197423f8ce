package fortune

import (
	"math/rand"
	"testing"
)

func TestLibraryPick(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	var empty Library
	if _, ok := empty.Pick(r); ok {
		t.Error("empty library must not pick")
	}

	lib := Library{"only"}
	text, ok := lib.Pick(r)
	if !ok || text != "only" {
		t.Errorf("Pick() = (%q, %v), want (only, true)", text, ok)
	}

	many := Library{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		text, ok := many.Pick(r)
		if !ok {
			t.Fatal("pick from non-empty library failed")
		}
		seen[text] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected all entries reachable, saw %v", seen)
	}
}
