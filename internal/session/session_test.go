package session

import (
	"context"
	"testing"
)

func TestHistoryEmptyForUnknownSession(t *testing.T) {
	m := NewMemory(2)
	h, err := m.History(context.Background(), "nope")
	if err != nil {
		t.Fatal(err)
	}
	if h != "" {
		t.Fatalf("expected empty history, got %q", h)
	}
}

func TestHistoryRendersOldestFirst(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	if err := m.AddExchange(ctx, "s1", "q1", "a1"); err != nil {
		t.Fatal(err)
	}
	if err := m.AddExchange(ctx, "s1", "q2", "a2"); err != nil {
		t.Fatal(err)
	}

	h, err := m.History(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	want := "User: q1\nAssistant: a1\nUser: q2\nAssistant: a2"
	if h != want {
		t.Fatalf("history:\n got %q\nwant %q", h, want)
	}
}

func TestHistoryDropsOldestBeyondLimit(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	for _, q := range []string{"q1", "q2", "q3"} {
		if err := m.AddExchange(ctx, "s1", q, "a-"+q); err != nil {
			t.Fatal(err)
		}
	}

	h, err := m.History(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	want := "User: q2\nAssistant: a-q2\nUser: q3\nAssistant: a-q3"
	if h != want {
		t.Fatalf("history after eviction:\n got %q\nwant %q", h, want)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	m := NewMemory(2)
	ctx := context.Background()
	if err := m.AddExchange(ctx, "a", "qa", "aa"); err != nil {
		t.Fatal(err)
	}
	if err := m.AddExchange(ctx, "b", "qb", "ab"); err != nil {
		t.Fatal(err)
	}

	h, _ := m.History(ctx, "a")
	if h != "User: qa\nAssistant: aa" {
		t.Fatalf("session a history: %q", h)
	}
}

func TestAddExchangeRequiresSessionID(t *testing.T) {
	m := NewMemory(2)
	if err := m.AddExchange(context.Background(), "", "q", "a"); err == nil {
		t.Fatal("expected error for empty session id")
	}
}
