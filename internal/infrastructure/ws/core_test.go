package ws

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hilthontt/chatrelay/internal/domain"
)

func newTestCore(prune bool) *Core {
	return NewCore(CoreOptions{PruneOnDisconnect: prune})
}

func newTestClient(buffer int) *Client {
	return NewClient(nil, buffer)
}

func join(c *Core, cl *Client, roomID, userID string) {
	payload, _ := json.Marshal(JoinPayload{RoomID: roomID, UserID: userID})
	c.handleJoin(cl, payload)
}

func tryRecv(cl *Client) (*WSMessage, bool) {
	select {
	case msg := <-cl.send:
		return msg, true
	default:
		return nil, false
	}
}

func drain(cl *Client) int {
	n := 0
	for {
		if _, ok := tryRecv(cl); !ok {
			return n
		}
		n++
	}
}

func TestMessageReachesEveryMemberIncludingSender(t *testing.T) {
	core := newTestCore(true)
	sender := newTestClient(8)
	other := newTestClient(8)
	outsider := newTestClient(8)

	join(core, sender, "room-1", "alice")
	join(core, other, "room-1", "bob")
	join(core, outsider, "room-2", "carol")

	raw := json.RawMessage(`{"roomId":"room-1","senderId":"alice","text":"hi"}`)
	core.handleMessage(sender, raw)

	for _, cl := range []*Client{sender, other} {
		msg, ok := tryRecv(cl)
		if !ok {
			t.Fatalf("expected a delivery for client %s", cl.ID)
		}
		if msg.Type != EventMessage {
			t.Fatalf("expected type %q, got %q", EventMessage, msg.Type)
		}
		got, isRaw := msg.Data.(json.RawMessage)
		if !isRaw {
			t.Fatalf("expected raw payload, got %T", msg.Data)
		}
		if string(got) != string(raw) {
			t.Fatalf("payload not forwarded verbatim: got %s", got)
		}
	}

	if _, ok := tryRecv(outsider); ok {
		t.Fatal("client in another room received the message")
	}
}

func TestTypingExcludesSender(t *testing.T) {
	core := newTestCore(true)
	sender := newTestClient(8)
	other := newTestClient(8)

	join(core, sender, "room-1", "alice")
	join(core, other, "room-1", "bob")

	payload, _ := json.Marshal(domain.TypingStatus{RoomID: "room-1", UserID: "alice", IsTyping: true})
	core.handleTyping(sender, payload)

	if _, ok := tryRecv(sender); ok {
		t.Fatal("sender received its own typing notice")
	}

	msg, ok := tryRecv(other)
	if !ok {
		t.Fatal("expected a typing notice for the other member")
	}
	notice, isNotice := msg.Data.(TypingNotice)
	if !isNotice {
		t.Fatalf("expected TypingNotice, got %T", msg.Data)
	}
	if notice.UserID != "alice" || !notice.IsTyping {
		t.Fatalf("unexpected notice: %+v", notice)
	}
}

func TestFullMessagePayloadSurvivesRelay(t *testing.T) {
	core := newTestCore(true)
	sender := newTestClient(8)
	join(core, sender, "room-1", "alice")

	original := domain.ChatMessage{
		ID:         "m-1",
		RoomID:     "room-1",
		SenderID:   "alice",
		SenderName: "Alice",
		Text:       "look at this",
		MediaURL:   "http://localhost:5013/file/64f1c0d2",
		MediaType:  "image/png",
		Timestamp:  1700000000000,
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}

	core.handleMessage(sender, raw)

	msg, ok := tryRecv(sender)
	if !ok {
		t.Fatal("expected the sender echo")
	}

	var got domain.ChatMessage
	if err := json.Unmarshal(msg.Data.(json.RawMessage), &got); err != nil {
		t.Fatalf("unmarshal relayed message: %v", err)
	}
	if got != original {
		t.Fatalf("relayed message differs:\n got %+v\nwant %+v", got, original)
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)

	join(core, cl, "room-1", "alice")
	join(core, cl, "room-1", "alice")

	raw := json.RawMessage(`{"roomId":"room-1","senderId":"alice","text":"once"}`)
	core.handleMessage(cl, raw)

	if got := drain(cl); got != 1 {
		t.Fatalf("expected exactly one delivery after duplicate join, got %d", got)
	}
}

func TestJoinWithoutRoomIsIgnored(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)

	join(core, cl, "", "alice")

	if len(core.rooms.rooms) != 0 {
		t.Fatal("join without a room id must not create a room")
	}
	if _, ok := core.registry.Resolve("alice"); ok {
		t.Fatal("join without a room id must not bind the user")
	}
}

func TestLastBindWins(t *testing.T) {
	core := newTestCore(true)
	first := newTestClient(8)
	second := newTestClient(8)

	join(core, first, "room-1", "alice")
	join(core, second, "room-2", "alice")

	bound, ok := core.registry.Resolve("alice")
	if !ok {
		t.Fatal("expected alice to be bound")
	}
	if bound != second {
		t.Fatal("expected the later connection to own the user id")
	}
}

func TestMessageToUnknownRoomDeliversNothing(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)
	join(core, cl, "room-1", "alice")

	core.handleMessage(cl, json.RawMessage(`{"roomId":"ghost","senderId":"alice"}`))

	if _, ok := tryRecv(cl); ok {
		t.Fatal("message to an unknown room must not be delivered")
	}
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)
	join(core, cl, "room-1", "alice")

	core.dispatch(cl, Frame{Type: "dance", Data: json.RawMessage(`{}`)})

	if _, ok := tryRecv(cl); ok {
		t.Fatal("unknown event type must not produce deliveries")
	}
}

func TestMalformedPayloadsAreDropped(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)
	join(core, cl, "room-1", "alice")

	core.handleMessage(cl, json.RawMessage(`{not json`))
	core.handleTyping(cl, json.RawMessage(`[]`))
	core.handleJoin(cl, json.RawMessage(`"nope"`))

	if _, ok := tryRecv(cl); ok {
		t.Fatal("malformed payloads must not produce deliveries")
	}
}

func TestDisconnectUnbindsAllUsers(t *testing.T) {
	core := newTestCore(true)
	cl := newTestClient(8)

	join(core, cl, "room-1", "alice")
	join(core, cl, "room-2", "alice2")

	core.handleDisconnect(cl)

	if _, ok := core.registry.Resolve("alice"); ok {
		t.Fatal("alice still bound after disconnect")
	}
	if _, ok := core.registry.Resolve("alice2"); ok {
		t.Fatal("alice2 still bound after disconnect")
	}
}

func TestDisconnectPrunesRoomMembership(t *testing.T) {
	core := newTestCore(true)
	gone := newTestClient(8)
	stays := newTestClient(8)

	join(core, gone, "room-1", "alice")
	join(core, stays, "room-1", "bob")

	core.handleDisconnect(gone)

	core.handleMessage(stays, json.RawMessage(`{"roomId":"room-1","senderId":"bob"}`))

	if got := drain(gone); got != 0 {
		t.Fatalf("disconnected client received %d deliveries", got)
	}
	if got := drain(stays); got != 1 {
		t.Fatalf("remaining member expected 1 delivery, got %d", got)
	}
}

func TestDisconnectKeepsMembershipWhenPruneDisabled(t *testing.T) {
	core := newTestCore(false)
	gone := newTestClient(8)
	stays := newTestClient(8)

	join(core, gone, "room-1", "alice")
	join(core, stays, "room-1", "bob")

	core.handleDisconnect(gone)

	// Broadcasting into a stale member set must not panic; the dead
	// connection's buffer simply soaks up the delivery.
	core.handleMessage(stays, json.RawMessage(`{"roomId":"room-1","senderId":"bob"}`))

	if got := drain(gone); got != 1 {
		t.Fatalf("stale member expected 1 buffered delivery, got %d", got)
	}
	if got := drain(stays); got != 1 {
		t.Fatalf("remaining member expected 1 delivery, got %d", got)
	}
}

func TestReconnectNeedsFreshJoin(t *testing.T) {
	core := newTestCore(true)
	old := newTestClient(8)
	join(core, old, "room-1", "alice")
	core.handleDisconnect(old)

	// Same user, new connection, no join frame yet.
	fresh := newTestClient(8)
	core.handleConnect(fresh)
	core.registry.Bind("alice", fresh)

	sender := newTestClient(8)
	join(core, sender, "room-1", "bob")
	core.handleMessage(sender, json.RawMessage(`{"roomId":"room-1","senderId":"bob"}`))

	if got := drain(fresh); got != 0 {
		t.Fatalf("reconnected client got %d deliveries without rejoining", got)
	}
}

func TestSlowClientDropsInsteadOfBlocking(t *testing.T) {
	core := newTestCore(true)
	slow := newTestClient(1)
	sender := newTestClient(8)

	join(core, slow, "room-1", "alice")
	join(core, sender, "room-1", "bob")

	raw := json.RawMessage(`{"roomId":"room-1","senderId":"bob"}`)
	core.handleMessage(sender, raw)
	core.handleMessage(sender, raw) // slow's buffer of 1 is now full
	core.handleMessage(sender, raw)

	if got := drain(slow); got != 1 {
		t.Fatalf("expected slow client to keep 1 buffered delivery, got %d", got)
	}
	if got := drain(sender); got != 3 {
		t.Fatalf("expected sender to receive all 3 echoes, got %d", got)
	}
}

func TestRunProcessesRegisterAndStop(t *testing.T) {
	core := newTestCore(true)
	go core.Run()
	defer core.Stop()

	cl := newTestClient(8)
	core.Register() <- cl
	core.Unregister() <- cl
}

type auditRecorder struct {
	events []string
}

func (a *auditRecorder) PublishRelayEvent(_ context.Context, entry *domain.RelayAuditLog) error {
	a.events = append(a.events, string(entry.EventType))
	return nil
}

func TestAuditReceivesRelayEvents(t *testing.T) {
	audit := &auditRecorder{}
	core := NewCore(CoreOptions{PruneOnDisconnect: true, Audit: audit})
	cl := newTestClient(8)

	join(core, cl, "room-1", "alice")
	core.handleMessage(cl, json.RawMessage(`{"roomId":"room-1","senderId":"alice"}`))
	core.handleDisconnect(cl)

	want := []string{"room_joined", "message_relayed", "client_disconnected"}
	if len(audit.events) != len(want) {
		t.Fatalf("expected %d audit events, got %d", len(want), len(audit.events))
	}
	for i, eventType := range want {
		if audit.events[i] != eventType {
			t.Fatalf("audit event %d: expected %s, got %s", i, eventType, audit.events[i])
		}
	}
}
