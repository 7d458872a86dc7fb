package ws

import "encoding/json"

// Frame is what a client sends: an event type plus an opaque payload.
// The payload stays raw so message bodies can be rebroadcast verbatim.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// WSMessage is what the relay sends to clients.
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Payload structs
type JoinPayload struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// TypingNotice is the derived typing event delivered to room members.
// The room id is stripped on the way out; recipients already know it.
type TypingNotice struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// roomRef extracts only the room id from a message payload. Every other
// field is forwarded untouched.
type roomRef struct {
	RoomID   string `json:"roomId"`
	SenderID string `json:"senderId"`
}

func NewMessageRelay(payload json.RawMessage) *WSMessage {
	return &WSMessage{
		Type: EventMessage,
		Data: payload,
	}
}

func NewTypingNotice(userID string, isTyping bool) *WSMessage {
	return &WSMessage{
		Type: EventTyping,
		Data: TypingNotice{
			UserID:   userID,
			IsTyping: isTyping,
		},
	}
}
