package memory

import (
	"context"
	"testing"
	"time"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

func TestGetMissingUser(t *testing.T) {
	s := New()
	rec, err := s.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("missing user should yield nil, got %+v", rec)
	}
}

func TestPutGetDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	in := &fortune.UserRecord{
		DailyCard:     &fortune.CardState{IssuedAt: time.Now(), Index: 3},
		Birthday:      "01.01.2000",
		OracleCredits: 2,
	}
	if err := s.Put(ctx, "u1", in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DailyCard.Index != 3 || got.Birthday != "01.01.2000" || got.OracleCredits != 2 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	// The store hands out copies, not aliases.
	got.OracleCredits = 99
	again, _ := s.Get(ctx, "u1")
	if again.OracleCredits != 2 {
		t.Error("mutating a returned record must not affect the store")
	}

	if err := s.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if rec, _ := s.Get(ctx, "u1"); rec != nil {
		t.Error("record should be gone after delete")
	}
}

func TestAllAndReset(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Put(ctx, "u1", &fortune.UserRecord{})
	s.Put(ctx, "u2", &fortune.UserRecord{OracleCredits: 1})

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 records, got %d", len(all))
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ = s.All(ctx)
	if len(all) != 0 {
		t.Errorf("expected empty store after reset, got %d records", len(all))
	}
}
