package api

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store: err = %v, want ErrNotFound", err)
	}

	if err := s.Create(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rec, err := s.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("Get after Create: %v", err)
	}
	if rec.Username != "alice" || rec.Kills != 0 || rec.Deaths != 0 {
		t.Fatalf("fresh record = %+v", rec)
	}
	if rec.PasswordHash == "hunter22" || rec.PasswordHash == "" {
		t.Fatalf("password stored without hashing")
	}

	if err := s.Create(ctx, "alice", "other"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("duplicate Create: err = %v, want ErrAlreadyExists", err)
	}
}

func TestMemoryStoreVerify(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, "alice", "hunter22"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := s.Verify(ctx, "alice", "hunter22")
	if err != nil || !ok {
		t.Fatalf("Verify with correct password: ok=%v err=%v", ok, err)
	}
	ok, err = s.Verify(ctx, "alice", "wrong")
	if err != nil || ok {
		t.Fatalf("Verify with wrong password: ok=%v err=%v", ok, err)
	}
	ok, err = s.Verify(ctx, "nobody", "hunter22")
	if err != nil || ok {
		t.Fatalf("Verify unknown user: ok=%v err=%v", ok, err)
	}
}

func TestMemoryStoreCounters(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	if err := s.Create(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.IncrementKills(ctx, "alice"); err != nil {
			t.Fatalf("IncrementKills: %v", err)
		}
	}
	if err := s.IncrementDeaths(ctx, "alice"); err != nil {
		t.Fatalf("IncrementDeaths: %v", err)
	}
	rec, _ := s.Get(ctx, "alice")
	if rec.Kills != 3 || rec.Deaths != 1 {
		t.Fatalf("counters = %d/%d, want 3/1", rec.Kills, rec.Deaths)
	}

	if err := s.SetStats(ctx, "alice", 10, 4); err != nil {
		t.Fatalf("SetStats: %v", err)
	}
	rec, _ = s.Get(ctx, "alice")
	if rec.Kills != 10 || rec.Deaths != 4 {
		t.Fatalf("after SetStats: %d/%d, want 10/4", rec.Kills, rec.Deaths)
	}

	// Guests never registered; their flush goes nowhere.
	if err := s.SetStats(ctx, "anon", 99, 99); err != nil {
		t.Fatalf("SetStats for unknown user: %v", err)
	}
	if _, err := s.Get(ctx, "anon"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("SetStats created a record for an unknown user")
	}
	if err := s.IncrementKills(ctx, "anon"); err != nil {
		t.Fatalf("IncrementKills for unknown user: %v", err)
	}
}

func TestMemoryStoreTopKillers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for _, u := range []struct {
		name  string
		kills int
	}{
		{"carol", 5},
		{"alice", 9},
		{"bob", 5},
		{"dave", 1},
	} {
		if err := s.Create(ctx, u.name, "pw"); err != nil {
			t.Fatalf("Create %s: %v", u.name, err)
		}
		if err := s.SetStats(ctx, u.name, u.kills, 0); err != nil {
			t.Fatalf("SetStats %s: %v", u.name, err)
		}
	}

	top, err := s.TopKillers(ctx, 3)
	if err != nil {
		t.Fatalf("TopKillers: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("len = %d, want 3", len(top))
	}
	// Ties break alphabetically.
	want := []string{"alice", "bob", "carol"}
	for i, name := range want {
		if top[i].Username != name {
			t.Fatalf("top[%d] = %s, want %s", i, top[i].Username, name)
		}
	}
}
