package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RelayEventType string

const (
	EventClientConnected    RelayEventType = "client_connected"
	EventClientDisconnected RelayEventType = "client_disconnected"
	EventRoomJoined         RelayEventType = "room_joined"
	EventMessageRelayed     RelayEventType = "message_relayed"
	EventTypingRelayed      RelayEventType = "typing_relayed"
)

type RelayAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomID    string         `bson:"room_id" json:"roomId"`
	EventType RelayEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RelayAuditRepository interface {
	Log(ctx context.Context, log *RelayAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]RelayAuditLog, error)
	GetByEventType(ctx context.Context, eventType RelayEventType, from, to time.Time) ([]RelayAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomJoinedLog(roomID, userID string, memberCount int) *RelayAuditLog {
	return &RelayAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomJoined,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"user_id":      userID,
			"member_count": memberCount,
		},
	}
}

func NewMessageRelayedLog(roomID, senderID string, recipients int) *RelayAuditLog {
	return &RelayAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventMessageRelayed,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"sender_id":  senderID,
			"recipients": recipients,
		},
	}
}

func NewTypingRelayedLog(roomID, userID string, isTyping bool) *RelayAuditLog {
	return &RelayAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventTypingRelayed,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"user_id":   userID,
			"is_typing": isTyping,
		},
	}
}

func NewClientDisconnectedLog(userIDs []string) *RelayAuditLog {
	return &RelayAuditLog{
		ID:        uuid.NewString(),
		EventType: EventClientDisconnected,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"user_ids": userIDs,
		},
	}
}
