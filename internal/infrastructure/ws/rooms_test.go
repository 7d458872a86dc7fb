package ws

import "testing"

func TestJoinCreatesRoomOnDemand(t *testing.T) {
	rt := NewRoomTracker()
	cl := newTestClient(1)

	rt.Join("room-1", cl)

	members := rt.MembersOf("room-1")
	if len(members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(members))
	}
	if _, ok := members[cl]; !ok {
		t.Fatal("client missing from member set")
	}
}

func TestDuplicateJoinKeepsSetSemantics(t *testing.T) {
	rt := NewRoomTracker()
	cl := newTestClient(1)

	rt.Join("room-1", cl)
	rt.Join("room-1", cl)

	if got := len(rt.MembersOf("room-1")); got != 1 {
		t.Fatalf("expected 1 member after duplicate join, got %d", got)
	}
}

func TestMembersOfUnknownRoomIsNil(t *testing.T) {
	rt := NewRoomTracker()
	if rt.MembersOf("ghost") != nil {
		t.Fatal("unknown room must have no member set")
	}
}

func TestRemoveDropsClientAndEmptyRooms(t *testing.T) {
	rt := NewRoomTracker()
	cl := newTestClient(1)
	other := newTestClient(1)

	rt.Join("room-1", cl)
	rt.Join("room-1", other)
	rt.Join("room-2", cl)

	rt.Remove(cl)

	if got := len(rt.MembersOf("room-1")); got != 1 {
		t.Fatalf("expected 1 member left in room-1, got %d", got)
	}
	if _, ok := rt.rooms["room-2"]; ok {
		t.Fatal("emptied room must be deleted")
	}
}
