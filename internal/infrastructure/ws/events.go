package ws

// Wire event types. Inbound and outbound share names: a relayed message
// goes back out as "message", a typing notice as "typing".
const (
	EventJoin    = "join"
	EventMessage = "message"
	EventTyping  = "typing"
)
