package ws

import "testing"

func TestBindReplacesEarlierConnection(t *testing.T) {
	reg := NewRegistry()
	first := newTestClient(1)
	second := newTestClient(1)

	reg.Bind("alice", first)
	reg.Bind("alice", second)

	got, ok := reg.Resolve("alice")
	if !ok || got != second {
		t.Fatal("expected the later bind to win")
	}
}

func TestBindIgnoresEmptyUserID(t *testing.T) {
	reg := NewRegistry()
	reg.Bind("", newTestClient(1))

	if _, ok := reg.Resolve(""); ok {
		t.Fatal("empty user id must not be bound")
	}
}

func TestUnbindAllRemovesEveryIdentity(t *testing.T) {
	reg := NewRegistry()
	cl := newTestClient(1)
	other := newTestClient(1)

	reg.Bind("alice", cl)
	reg.Bind("alice-alt", cl)
	reg.Bind("bob", other)

	removed := reg.UnbindAll(cl)
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed ids, got %d", len(removed))
	}
	if _, ok := reg.Resolve("bob"); !ok {
		t.Fatal("unrelated binding was removed")
	}

	// Idempotent
	if again := reg.UnbindAll(cl); len(again) != 0 {
		t.Fatalf("second unbind removed %d ids", len(again))
	}
}
