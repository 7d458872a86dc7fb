package contracts

// AmqpMessage is the message structure for AMQP.
type AmqpMessage struct {
	RoomID string `json:"roomId,omitempty"`
	Data   []byte `json:"data"`
}

// Routing keys - using consistent event/command patterns
const (
	EventRoomJoined         = "relay.room_joined"
	EventMessageRelayed     = "relay.message_relayed"
	EventTypingRelayed      = "relay.typing_relayed"
	EventClientDisconnected = "relay.client_disconnected"
)
