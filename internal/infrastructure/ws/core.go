package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hilthontt/chatrelay/internal/domain"
	"github.com/hilthontt/chatrelay/internal/infrastructure/metrics"
)

// AuditPublisher receives a copy of every relay event worth auditing.
// Publishing is fire-and-forget from the relay's point of view.
type AuditPublisher interface {
	PublishRelayEvent(ctx context.Context, entry *domain.RelayAuditLog) error
}

type inboundFrame struct {
	client *Client
	frame  Frame
}

// Core is the relay's single event-processing stream. One goroutine runs
// Run and is the only thing that touches the registry and room tracker,
// so neither needs a lock.
type Core struct {
	registry *Registry
	rooms    *RoomTracker

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundFrame
	quit       chan struct{}

	pruneOnDisconnect bool
	metrics           *metrics.Metrics
	audit             AuditPublisher
}

type CoreOptions struct {
	// PruneOnDisconnect removes a connection from all room member sets when
	// it drops. Disable to reproduce the legacy add-only membership
	// behavior, where stale entries linger until process restart.
	PruneOnDisconnect bool
	Metrics           *metrics.Metrics
	Audit             AuditPublisher
}

func NewCore(opts CoreOptions) *Core {
	return &Core{
		registry:          NewRegistry(),
		rooms:             NewRoomTracker(),
		register:          make(chan *Client),
		unregister:        make(chan *Client),
		inbound:           make(chan inboundFrame, 256),
		quit:              make(chan struct{}),
		pruneOnDisconnect: opts.PruneOnDisconnect,
		metrics:           opts.Metrics,
		audit:             opts.Audit,
	}
}

func (c *Core) Run() {
	for {
		select {
		case cl := <-c.register:
			c.handleConnect(cl)

		case cl := <-c.unregister:
			c.handleDisconnect(cl)

		case in := <-c.inbound:
			c.dispatch(in.client, in.frame)

		case <-c.quit:
			return
		}
	}
}

func (c *Core) Stop() {
	close(c.quit)
}

func (c *Core) Register() chan<- *Client {
	return c.register
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) handleConnect(cl *Client) {
	// A new connection has no identity and no rooms yet; both arrive with
	// its join frames.
	c.metrics.ConnOpened()
	log.Printf("client connected: %s", cl.ID)
}

func (c *Core) handleDisconnect(cl *Client) {
	removed := c.registry.UnbindAll(cl)
	if c.pruneOnDisconnect {
		c.rooms.Remove(cl)
	}
	cl.shutdown()

	c.metrics.ConnClosed()
	log.Printf("client disconnected: %s (unbound %d users)", cl.ID, len(removed))

	if c.audit != nil && len(removed) > 0 {
		if err := c.audit.PublishRelayEvent(context.Background(), domain.NewClientDisconnectedLog(removed)); err != nil {
			log.Printf("audit publish failed: %v", err)
		}
	}
}

func (c *Core) dispatch(cl *Client, frame Frame) {
	switch frame.Type {
	case EventJoin:
		c.handleJoin(cl, frame.Data)
	case EventMessage:
		c.handleMessage(cl, frame.Data)
	case EventTyping:
		c.handleTyping(cl, frame.Data)
	default:
		log.Printf("unknown event type %q from client %s", frame.Type, cl.ID)
	}
}

func (c *Core) handleJoin(cl *Client, data json.RawMessage) {
	var payload JoinPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("bad join payload from client %s: %v", cl.ID, err)
		return
	}
	if payload.RoomID == "" {
		return
	}

	c.rooms.Join(payload.RoomID, cl)
	c.registry.Bind(payload.UserID, cl)
	c.metrics.EventRelayed(EventJoin)

	// No acknowledgment goes back to the sender.
	if c.audit != nil {
		entry := domain.NewRoomJoinedLog(payload.RoomID, payload.UserID, len(c.rooms.MembersOf(payload.RoomID)))
		if err := c.audit.PublishRelayEvent(context.Background(), entry); err != nil {
			log.Printf("audit publish failed: %v", err)
		}
	}
}

// handleMessage fans the payload out verbatim to every member of the room,
// the sender included. Senders render their own echo.
func (c *Core) handleMessage(cl *Client, data json.RawMessage) {
	var ref roomRef
	if err := json.Unmarshal(data, &ref); err != nil {
		log.Printf("bad message payload from client %s: %v", cl.ID, err)
		return
	}

	members := c.rooms.MembersOf(ref.RoomID)
	out := NewMessageRelay(data)
	delivered := 0
	for member := range members {
		if c.deliver(member, out) {
			delivered++
		}
	}
	c.metrics.EventRelayed(EventMessage)

	if c.audit != nil {
		if err := c.audit.PublishRelayEvent(context.Background(), domain.NewMessageRelayedLog(ref.RoomID, ref.SenderID, delivered)); err != nil {
			log.Printf("audit publish failed: %v", err)
		}
	}
}

// handleTyping delivers a derived {userId, isTyping} notice to every room
// member except the sender; a client never sees its own typing state.
func (c *Core) handleTyping(cl *Client, data json.RawMessage) {
	var payload domain.TypingStatus
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("bad typing payload from client %s: %v", cl.ID, err)
		return
	}

	out := NewTypingNotice(payload.UserID, payload.IsTyping)
	for member := range c.rooms.MembersOf(payload.RoomID) {
		if member == cl {
			continue
		}
		c.deliver(member, out)
	}
	c.metrics.EventRelayed(EventTyping)

	if c.audit != nil {
		if err := c.audit.PublishRelayEvent(context.Background(), domain.NewTypingRelayedLog(payload.RoomID, payload.UserID, payload.IsTyping)); err != nil {
			log.Printf("audit publish failed: %v", err)
		}
	}
}

func (c *Core) deliver(cl *Client, msg *WSMessage) bool {
	select {
	case cl.send <- msg:
		return true
	default:
		// Client is too slow – drop the message
		c.metrics.DeliveryDropped()
		log.Printf("client %s buffer full, dropping message", cl.ID)
		return false
	}
}
